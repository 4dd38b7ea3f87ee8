package courseController

import (
	"fmt"
	"log"
	"strings"

	"readiq/models"

	"github.com/gofiber/fiber/v2"
)

var staticPages = []string{"/", "/courses", "/about"}

// Sitemap renders sitemap.xml from the static page set plus all publicly
// visible courses. A failing course query degrades to the static set only;
// the sitemap never errors out.
func (ctrl *Controller) Sitemap(c *fiber.Ctx) error {
	urls := make([]string, 0, len(staticPages))
	for _, page := range staticPages {
		urls = append(urls, ctrl.BaseURL+page)
	}

	var courses []models.Course
	err := ctrl.DB.
		Where("status = ? AND is_approved = true AND is_deleted = false", models.CourseStatusPublished).
		Find(&courses).Error
	if err != nil {
		log.Printf("Sitemap: course query failed, serving static pages only: %v", err)
	} else {
		for _, course := range courses {
			urls = append(urls, fmt.Sprintf("%s/courses/%d", ctrl.BaseURL, course.ID))
		}
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, u := range urls {
		b.WriteString("  <url><loc>" + u + "</loc></url>\n")
	}
	b.WriteString("</urlset>\n")

	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(b.String())
}
