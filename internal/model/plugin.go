package model

// PluginConfig toggles an optional feature area and restricts it to roles.
// An empty AllowedRoles list means every role may see the plugin.
type PluginConfig struct {
	PluginID     string   `mapstructure:"plugin_id" json:"plugin_id" yaml:"plugin_id"`
	Enabled      bool     `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	AllowedRoles []string `mapstructure:"allowed_roles" json:"allowed_roles" yaml:"allowed_roles"`
}

// Allows reports whether the plugin is on and visible to roleCode.
func (p PluginConfig) Allows(roleCode string) bool {
	if !p.Enabled {
		return false
	}
	if len(p.AllowedRoles) == 0 {
		return true
	}
	for _, r := range p.AllowedRoles {
		if r == roleCode {
			return true
		}
	}
	return false
}

// NavItem is one entry of the navigation the UI renders.
type NavItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

const (
	PluginAccounting     = "accounting"
	PluginCashDrawer     = "cash_drawer"
	PluginExpiryTracking = "expiry_tracking"
	PluginReports        = "reports"
)

var DefaultPlugins = []PluginConfig{
	{PluginID: PluginAccounting, Enabled: true, AllowedRoles: []string{RoleMasterAdmin, RoleAdmin}},
	{PluginID: PluginCashDrawer, Enabled: true, AllowedRoles: []string{RoleMasterAdmin, RoleAdmin, RoleCashier}},
	{PluginID: PluginExpiryTracking, Enabled: true},
	{PluginID: PluginReports, Enabled: false, AllowedRoles: []string{RoleMasterAdmin}},
}
