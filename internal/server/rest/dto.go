package rest

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	FullName        string  `json:"nombre_completo"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Organization    *string `json:"ong"`
	ProfileImageURL *string `json:"profile_image_url"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileUpdateRequest struct {
	FullName        *string `json:"nombre_completo"`
	ProfileImageURL *string `json:"profile_image_url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type deleteAccountRequest struct {
	CurrentPassword string `json:"current_password"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type analyzeRequest struct {
	ImageURLFront string  `json:"image_url_front"`
	ImageURLBack  *string `json:"image_url_back"`
}

type saveAnalysisRequest struct {
	ImageURL     string   `json:"url_imagen"`
	BackImageURL *string  `json:"url_imagen_reverso"`
	Prediction   string   `json:"prediction"`
	Confidence   *float64 `json:"confidence"`
}

type countResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type doseRequest struct {
	TreatmentID *int64 `json:"treatment_id"`
	PlantCount  *int   `json:"plant_count"`
}

type treatmentRequest struct {
	DiseaseID        int64   `json:"id_enfermedad"`
	CommercialName   string  `json:"nombre_comercial"`
	ActiveIngredient string  `json:"ingrediente_activo"`
	Kind             *string `json:"tipo_tratamiento"`
	Dose             *string `json:"dosis"`
	Frequency        *string `json:"frecuencia_aplicacion"`
	Notes            *string `json:"notas_adicionales"`
}

type deleteObjectRequest struct {
	ImageURL string `json:"image_url"`
}
