package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/efreitasn/orderdesk/internal/service"
	"github.com/go-chi/chi/v5"
)

// MenuHandler handles HTTP requests for menu endpoints.
type MenuHandler struct {
	menuSvc *service.MenuService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(menuSvc *service.MenuService) *MenuHandler {
	return &MenuHandler{menuSvc: menuSvc}
}

// menuResponse is a menu as rendered on the wire. Prices are dollars.
type menuResponse struct {
	MenuID string         `json:"menuId"`
	Name   string         `json:"name"`
	Items  []itemResponse `json:"items"`
}

type itemResponse struct {
	ItemID  string           `json:"itemId"`
	Name    string           `json:"name"`
	Price   float64          `json:"price"`
	Options []optionResponse `json:"options"`
}

type optionResponse struct {
	Name    string           `json:"name"`
	Choices []choiceResponse `json:"choices"`
}

type choiceResponse struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type menuListResponse struct {
	Menus []menuResponse `json:"menus"`
}

// List handles GET /menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.menuSvc.ListMenus(r.Context())
	if err != nil {
		mapMenuError(w, err)
		return
	}

	resp := menuListResponse{Menus: make([]menuResponse, len(menus))}
	for i, m := range menus {
		resp.Menus[i] = buildMenuResponse(m)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /menus/{menu_id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menuSvc.GetMenu(r.Context(), chi.URLParam(r, "menu_id"))
	if err != nil {
		mapMenuError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildMenuResponse(menu))
}

func buildMenuResponse(m *domain.Menu) menuResponse {
	items := make([]itemResponse, len(m.Items))
	for i, it := range m.Items {
		options := make([]optionResponse, len(it.Options))
		for j, opt := range it.Options {
			choices := make([]choiceResponse, len(opt.Choices))
			for k, c := range opt.Choices {
				choices[k] = choiceResponse{Name: c.Name, Price: c.PriceDelta.Dollars()}
			}
			options[j] = optionResponse{Name: opt.Name, Choices: choices}
		}
		items[i] = itemResponse{
			ItemID:  it.ItemID,
			Name:    it.Name,
			Price:   it.Price.Dollars(),
			Options: options,
		}
	}
	return menuResponse{MenuID: m.MenuID, Name: m.Name, Items: items}
}

// mapMenuError maps domain errors to HTTP responses for menu endpoints.
func mapMenuError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMenuNotFound):
		WriteError(w, http.StatusNotFound, "menu_not_found", "Menu not found")
	default:
		WriteError(w, http.StatusServiceUnavailable, "catalog_unavailable", "Menu catalog is temporarily unavailable")
	}
}
