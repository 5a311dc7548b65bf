package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/repos"
	"cellar/internal/services"
	"cellar/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// stockFilter reads the shared query parameters; ok is false when q is malformed.
func stockFilter(c *fiber.Ctx) (repos.StockFilter, bool) {
	f := repos.StockFilter{Location: strings.TrimSpace(c.Query("location"))}
	if cat, ok := domain.ParseCategory(c.Query("category")); ok && c.Query("category") != "" {
		f.Category = string(cat)
	}
	if raw := c.Query("q"); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return f, false
		}
		f.Q = q
	}
	f.LowOnly = c.Query("low") == "1" || c.Query("low") == "true"
	return f, true
}

// Page renders the stock list with the low-stock rows highlighted.
func (h *InventoryHandler) Page(c *fiber.Ctx) error {
	f, ok := stockFilter(c)
	if !ok {
		c.Status(fiber.StatusBadRequest)
		return render(c, "inventory", fiber.Map{
			"Err": "Search may only contain letters, digits and spaces", "Q": "", "Category": f.Category, "Location": f.Location,
		})
	}
	rows, err := h.Inv.List(f)
	if err != nil {
		return err
	}
	low, err := h.Inv.LowStock()
	if err != nil {
		return err
	}
	return render(c, "inventory", fiber.Map{
		"Rows":     rows,
		"LowCount": len(low),
		"Q":        f.Q,
		"Category": f.Category,
		"Location": f.Location,
	})
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	f, ok := stockFilter(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid search query")
	}
	rows, err := h.Inv.List(f)
	if err != nil {
		applog.Error(c, "inventory.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load inventory")
	}
	if rows == nil {
		rows = []domain.StockRow{}
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) Low(c *fiber.Ctx) error {
	rows, err := h.Inv.LowStock()
	if err != nil {
		applog.Error(c, "inventory.low.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load inventory")
	}
	if rows == nil {
		rows = []domain.StockRow{}
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) Locations(c *fiber.Ctx) error {
	locs, err := h.Inv.Locations()
	if err != nil {
		applog.Error(c, "location.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load locations")
	}
	if locs == nil {
		locs = []domain.Location{}
	}
	return c.JSON(locs)
}

type locationInput struct {
	Name        string `json:"name" form:"name"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
}

func (h *InventoryHandler) CreateLocation(c *fiber.Ctx) error {
	var in locationInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "enter a location name of at most 60 characters")
	}
	cat, ok := domain.ParseCategory(in.Category)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "category must be wine or other-goods")
	}
	loc, err := h.Inv.CreateLocation(name, cat, in.Description)
	if err != nil {
		applog.Error(c, "location.create.fail", err, map[string]any{"name": name})
		return jsonError(c, fiber.StatusInternalServerError, "could not create location")
	}
	applog.Audit(c, "location.create", map[string]any{"name": loc.Name, "category": loc.Category})
	return c.Status(fiber.StatusCreated).JSON(loc)
}
