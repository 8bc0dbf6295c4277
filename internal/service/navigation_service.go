package service

import (
	"strings"

	"go-inventory-pos/internal/model"
)

// NavigationService decides which screens a role may open.
type NavigationService interface {
	Build(roleCode string) []model.NavItem
}

var coreNav = []model.NavItem{
	{ID: "dashboard", Label: "Dashboard", Path: "/dashboard"},
	{ID: "pos", Label: "Point of Sale", Path: "/pos"},
	{ID: "products", Label: "Products", Path: "/products"},
	{ID: "logs", Label: "Activity Log", Path: "/logs"},
}

var pluginNav = map[string]model.NavItem{
	model.PluginAccounting:     {ID: model.PluginAccounting, Label: "Accounting", Path: "/accounting"},
	model.PluginCashDrawer:     {ID: model.PluginCashDrawer, Label: "Cash Drawer", Path: "/drawer"},
	model.PluginExpiryTracking: {ID: model.PluginExpiryTracking, Label: "Expiring Stock", Path: "/expiring"},
	model.PluginReports:        {ID: model.PluginReports, Label: "Reports", Path: "/reports"},
}

type navigationService struct {
	plugins []model.PluginConfig
}

// NewNavigationService takes the plugin list loaded once at startup.
func NewNavigationService(plugins []model.PluginConfig) NavigationService {
	cp := make([]model.PluginConfig, len(plugins))
	copy(cp, plugins)
	return &navigationService{plugins: cp}
}

// Build returns the core items followed by every plugin that is enabled and
// allowed for roleCode, in configuration order.
func (s *navigationService) Build(roleCode string) []model.NavItem {
	items := make([]model.NavItem, 0, len(coreNav)+len(s.plugins))
	items = append(items, coreNav...)
	for _, p := range s.plugins {
		if !p.Allows(roleCode) {
			continue
		}
		item, ok := pluginNav[p.PluginID]
		if !ok {
			item = model.NavItem{ID: p.PluginID, Label: label(p.PluginID), Path: "/plugins/" + p.PluginID}
		}
		items = append(items, item)
	}
	return items
}

func label(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
