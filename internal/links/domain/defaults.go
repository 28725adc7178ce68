package domain

// DefaultProjects is the built-in list an empty local store is seeded with.
func DefaultProjects() []NewProject {
	return []NewProject{
		{
			Name:        "Bookings",
			Description: "Booking management system",
			URL:         "https://bookings-rust-rho.vercel.app/",
			Category:    "Management",
		},
		{
			Name:        "Funeral Form",
			Description: "Funeral service form management",
			URL:         "https://funeral-form.vercel.app/",
			Category:    "Forms",
		},
		{
			Name:        "Membership",
			Description: "Membership management system",
			URL:         "https://membership-plum.vercel.app/",
			Category:    "Management",
		},
		{
			Name:        "Taha School System",
			Description: "School management system",
			URL:         "https://taha-school-system.vercel.app/",
			Category:    "Education",
		},
		{
			Name:        "Smart Squad Pty Ltd",
			Description: "Business management platform",
			URL:         "https://smart-squad-m-build.vercel.app/",
			Category:    "Business",
		},
		{
			Name:        "Ibuilt Plastering Pty Ltd",
			Description: "Invoice management system for Raza",
			URL:         "https://ibuilt-invoice.vercel.app/",
			Category:    "Finance",
		},
	}
}
