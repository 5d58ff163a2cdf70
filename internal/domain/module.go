package domain

import "fmt"

// ModuleType identifies one feature screen of the assistant
type ModuleType string

const (
	ModuleRestoration ModuleType = "restoration"
	ModuleTranslation ModuleType = "translation"
	ModuleMosaic      ModuleType = "mosaic"
	ModuleVase        ModuleType = "vase"
	ModuleFrigated    ModuleType = "frigated"
)

// Modules lists every module in navigation order
var Modules = []ModuleType{
	ModuleRestoration,
	ModuleTranslation,
	ModuleMosaic,
	ModuleVase,
	ModuleFrigated,
}

// ParseModuleType validates a module identifier
func ParseModuleType(s string) (ModuleType, error) {
	for _, m := range Modules {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown module: %q", s)
}

// CallsAssistant reports whether the module forwards images to the assistant
func (m ModuleType) CallsAssistant() bool {
	return m != ModuleFrigated
}

// NavItem represents one entry of the module navigation
type NavItem struct {
	ID             ModuleType
	Icon           string
	LabelKey       string
	DescriptionKey string
}

// NavItems returns the navigation entries in display order
func NavItems() []NavItem {
	icons := map[ModuleType]string{
		ModuleRestoration: "🏛️",
		ModuleTranslation: "📜",
		ModuleMosaic:      "🧩",
		ModuleVase:        "🏺",
		ModuleFrigated:    "🛡️",
	}
	items := make([]NavItem, 0, len(Modules))
	for _, m := range Modules {
		items = append(items, NavItem{
			ID:             m,
			Icon:           icons[m],
			LabelKey:       "nav." + string(m),
			DescriptionKey: "nav." + string(m) + ".desc",
		})
	}
	return items
}
