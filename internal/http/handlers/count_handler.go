package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/services"
	"cellar/internal/validate"
)

type CountHandler struct {
	Counts *services.CountService
}

type countInput struct {
	Quantity *int `json:"quantity" form:"quantity"`
	Delta    *int `json:"delta" form:"delta"`
}

const maxCount = 1_000_000

// Count records a stock count for one inventory row. The body carries either
// an absolute quantity or a signed delta.
func (h *CountHandler) Count(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid inventory id")
	}
	var in countInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}

	by := userEmail(c)
	var err error
	var entry domain.CountEntry
	switch {
	case in.Quantity != nil:
		if *in.Quantity > maxCount {
			return jsonError(c, fiber.StatusBadRequest, "quantity is too large")
		}
		entry, err = h.Counts.SetQuantity(id, *in.Quantity, by)
	case in.Delta != nil:
		if d := *in.Delta; d < -maxCount || d > maxCount {
			return jsonError(c, fiber.StatusBadRequest, "delta is too large")
		}
		entry, err = h.Counts.Adjust(id, *in.Delta, by)
	default:
		return jsonError(c, fiber.StatusBadRequest, "quantity or delta is required")
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "inventory row not found")
	case errors.Is(err, services.ErrNegativeQuantity):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		applog.Error(c, "count.fail", err, map[string]any{"inventory_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not record count")
	}
	applog.Audit(c, "count.record", map[string]any{"inventory_id": id})
	return c.JSON(entry)
}

// CountForm is the HTML variant of Count; it redirects back to the list.
func (h *CountHandler) CountForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Inventory row not found")
	}
	qty, ok := validate.Quantity(c.FormValue("quantity"))
	if !ok {
		return notFound(c, fiber.StatusBadRequest, "Quantity must be a whole number of at least 0")
	}
	if _, err := h.Counts.SetQuantity(id, qty, userEmail(c)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, fiber.StatusNotFound, "Inventory row not found")
		}
		return err
	}
	applog.Audit(c, "count.record", map[string]any{"inventory_id": id, "quantity": qty})
	return c.Redirect("/")
}

// History lists count entries for one wine, or the latest across all wines.
func (h *CountHandler) History(c *fiber.Ctx) error {
	vinID := ""
	if raw := c.Query("vinId"); raw != "" {
		v, ok := validate.VinID(raw)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid vinId")
		}
		vinID = v
	}
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	entries, err := h.Counts.History(vinID, limit)
	if err != nil {
		applog.Error(c, "count.history.fail", err, map[string]any{"vin_id": vinID})
		return jsonError(c, fiber.StatusInternalServerError, "could not load counts")
	}
	if entries == nil {
		entries = []domain.CountEntry{}
	}
	return c.JSON(entries)
}

// HistoryPage renders the count log.
func (h *CountHandler) HistoryPage(c *fiber.Ctx) error {
	vinID, _ := validate.VinID(c.Query("vinId"))
	entries, err := h.Counts.History(vinID, 200)
	if err != nil {
		return err
	}
	return render(c, "counts", fiber.Map{"Entries": entries, "VinID": vinID})
}
