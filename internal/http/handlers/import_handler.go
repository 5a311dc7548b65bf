package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/services"
	"cellar/internal/sheet"
)

type ImportHandler struct {
	Import   *services.ImportService
	MaxBytes int64
}

// importFailure carries the HTTP status chosen for an aborted import.
type importFailure struct {
	status int
	msg    string
}

func (f *importFailure) Error() string { return f.msg }

func (h *ImportHandler) Form(c *fiber.Ctx) error {
	return render(c, "import", fiber.Map{"Mode": string(domain.ModeUpdate), "Category": string(domain.CategoryWine)})
}

// run validates the multipart request and imports the uploaded file.
func (h *ImportHandler) run(c *fiber.Ctx) (domain.ImportResult, error) {
	mode, err := domain.ParseImportMode(c.FormValue("mode"))
	if err != nil {
		return domain.ImportResult{}, &importFailure{fiber.StatusBadRequest, err.Error()}
	}
	target, ok := domain.ParseCategory(c.FormValue("category"))
	if !ok {
		return domain.ImportResult{}, &importFailure{fiber.StatusBadRequest, "category must be wine or other-goods"}
	}
	if mode == domain.ModeOverwrite {
		if !isAdmin(c) {
			applog.Security(c, "import.overwrite.denied", map[string]any{"category": target})
			return domain.ImportResult{}, &importFailure{fiber.StatusForbidden, "only administrators may overwrite"}
		}
		if c.FormValue("confirm") != "true" {
			return domain.ImportResult{}, &importFailure{fiber.StatusBadRequest, "overwrite must be confirmed"}
		}
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ImportResult{}, &importFailure{fiber.StatusBadRequest, "choose a file to import"}
	}
	if h.MaxBytes > 0 && fh.Size > h.MaxBytes {
		applog.Security(c, "import.upload.too_large", map[string]any{"file": fh.Filename, "size": fh.Size})
		return domain.ImportResult{}, &importFailure{fiber.StatusRequestEntityTooLarge, "file is too large"}
	}
	f, err := fh.Open()
	if err != nil {
		return domain.ImportResult{}, err
	}
	defer f.Close()

	applog.Audit(c, "import.upload", map[string]any{
		"file": fh.Filename, "size": fh.Size, "mode": mode, "category": target, "by": userEmail(c),
	})
	res, err := h.Import.ImportUpload(f, fh.Filename, mode, target)
	if err != nil {
		var pe *sheet.ParseError
		if errors.As(err, &pe) {
			return res, &importFailure{fiber.StatusBadRequest, pe.Error()}
		}
		var se *services.StorageError
		if errors.As(err, &se) {
			applog.Error(c, "import.storage.fail", err, map[string]any{"file": fh.Filename})
			return res, &importFailure{fiber.StatusInternalServerError, "import aborted: the database could not be updated"}
		}
		return res, err
	}
	return res, nil
}

// Upload handles the HTML form and renders the result page.
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	res, err := h.run(c)
	if err != nil {
		var f *importFailure
		if errors.As(err, &f) {
			c.Status(f.status)
			return render(c, "import", fiber.Map{
				"Err": f.msg, "Mode": c.FormValue("mode"), "Category": c.FormValue("category"),
			})
		}
		return err
	}
	return render(c, "import_result", fiber.Map{"Result": res, "Failed": res.Failed()})
}

// API is Upload for scripted clients; the result is returned as JSON.
func (h *ImportHandler) API(c *fiber.Ctx) error {
	res, err := h.run(c)
	if err != nil {
		var f *importFailure
		if errors.As(err, &f) {
			return jsonError(c, f.status, f.msg)
		}
		applog.Error(c, "import.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "import failed")
	}
	return c.JSON(res)
}
