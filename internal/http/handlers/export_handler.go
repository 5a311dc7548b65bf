package handlers

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/services"
	"cellar/internal/sheet"
)

type ExportHandler struct {
	Export *services.ExportService
}

var contentTypes = map[sheet.Format]string{
	sheet.FormatCSV:         "text/csv; charset=utf-8",
	sheet.FormatSpreadsheet: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Download streams the current stock as CSV or XLSX. An empty category
// exports every location.
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	format, err := sheet.ParseFormat(c.Query("format", "csv"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "format must be csv or xlsx")
	}
	category := ""
	if raw := c.Query("category"); raw != "" {
		cat, ok := domain.ParseCategory(raw)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "category must be wine or other-goods")
		}
		category = string(cat)
	}

	var buf bytes.Buffer
	if err := h.Export.Write(&buf, format, category); err != nil {
		applog.Error(c, "export.fail", err, map[string]any{"format": format, "category": category})
		return jsonError(c, fiber.StatusInternalServerError, "export failed")
	}
	name := services.Filename(format, time.Now())
	applog.Audit(c, "export.download", map[string]any{"format": format, "category": category, "file": name, "bytes": buf.Len()})

	c.Set(fiber.HeaderContentType, contentTypes[format])
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}
