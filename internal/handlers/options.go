package handlers

import "net/http"

// Option lists offered to submission forms. Free-text values are still
// accepted on write; these are suggestions, not an enum.
var (
	RoomOptions = []string{
		"Living Room", "Bedroom", "Master Bedroom", "Bathroom",
		"Kitchen", "Outdoor", "Dining Room",
	}
	CategoryOptions = []string{
		"Tile", "Furniture", "Lighting", "Hardware", "Appliance", "Other",
	}
	AvailabilityOptions = []string{
		"In Stock", "Out of Stock", "Limited Stock",
	}
)

// OptionsResponse carries the form option lists.
type OptionsResponse struct {
	Rooms        []string `json:"rooms"`
	Categories   []string `json:"categories"`
	Availability []string `json:"availability"`
}

// OptionsHandler serves the static option lists for form rendering.
type OptionsHandler struct{}

// NewOptionsHandler creates a new OptionsHandler.
func NewOptionsHandler() *OptionsHandler {
	return &OptionsHandler{}
}

// ServeHTTP handles GET /api/options.
func (h *OptionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OptionsResponse{
		Rooms:        RoomOptions,
		Categories:   CategoryOptions,
		Availability: AvailabilityOptions,
	})
}
