package domain

// NavItem is one entry of the top navigation bar.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation returns the menu for a session. A nil session gets the public menu.
func Navigation(s *Session) []NavItem {
	items := []NavItem{
		{Label: "Tabulador", Path: "/"},
	}
	if s == nil {
		return append(items,
			NavItem{Label: "Iniciar sesión", Path: "/login"},
			NavItem{Label: "Registrarse", Path: "/register"},
		)
	}

	items = append(items, NavItem{Label: "Panel de Envío", Path: "/panel-user"})
	if s.IsAdmin() {
		items = append(items,
			NavItem{Label: "Panel Config", Path: "/panel-config"},
			NavItem{Label: "Panel Admin Envíos", Path: "/panel-admin"},
			NavItem{Label: "Usuarios", Path: "/refresh-user-admin"},
		)
	}
	return items
}
