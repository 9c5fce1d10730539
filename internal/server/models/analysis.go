package models

import "time"

// Analysis is a saved classification result. DeletedAt is set while the
// record sits in the trash.
type Analysis struct {
	ID           int64      `json:"id_analisis"`
	UserID       int64      `json:"id_usuario"`
	ImageURL     string     `json:"url_imagen"`
	BackImageURL *string    `json:"url_imagen_reverso"`
	Prediction   string     `json:"resultado_prediccion"`
	Confidence   float64    `json:"confianza"`
	CreatedAt    time.Time  `json:"fecha_analisis"`
	DeletedAt    *time.Time `json:"fecha_eliminado,omitempty"`
	OwnerEmail   string     `json:"email,omitempty"`
}

// InTrash reports whether the record was soft-deleted.
func (a *Analysis) InTrash() bool {
	return a.DeletedAt != nil
}

// BlobRefs lists the non-empty image references of a record.
type BlobRefs struct {
	ImageURL     string
	BackImageURL *string
}

// URLs flattens refs into the list of references to clean up.
func URLs(refs []BlobRefs) []string {
	out := make([]string, 0, len(refs)*2)
	for _, r := range refs {
		if r.ImageURL != "" {
			out = append(out, r.ImageURL)
		}
		if r.BackImageURL != nil && *r.BackImageURL != "" {
			out = append(out, *r.BackImageURL)
		}
	}
	return out
}
