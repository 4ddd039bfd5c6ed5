package model

// Language is a registered programming-language label with a display color.
// Names are unique (case-sensitive exact match) and the color is a 3- or
// 6-digit hex string like "#00ADD8".
type Language struct {
	ID        string `json:"id"        db:"id"`
	Name      string `json:"name"      db:"name"` // unique
	ColorCode string `json:"colorCode" db:"color_code"`
}
