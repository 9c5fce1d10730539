package models

// Disease is reference data describing a class the classifier can report.
type Disease struct {
	ID            int64   `json:"id"`
	CommonName    string  `json:"nombre_comun"`
	ClassifierTag string  `json:"roboflow_class"`
	ImageURL      *string `json:"imagen_url"`
	Kind          *string `json:"tipo"`
	Prevention    *string `json:"prevencion"`
	Risk          *string `json:"riesgo"`
}

// DiseaseUpdate holds the optional fields of an admin edit.
type DiseaseUpdate struct {
	ImageURL   *string `json:"imagen_url"`
	Kind       *string `json:"tipo"`
	Prevention *string `json:"prevencion"`
	Risk       *string `json:"riesgo"`
}

// Empty reports whether no field is set.
func (u DiseaseUpdate) Empty() bool {
	return u.ImageURL == nil && u.Kind == nil && u.Prevention == nil && u.Risk == nil
}

// Treatment is a product recommended against a disease.
type Treatment struct {
	ID               int64    `json:"id"`
	DiseaseID        int64    `json:"id_enfermedad"`
	CommercialName   string   `json:"nombre_comercial"`
	ActiveIngredient string   `json:"ingrediente_activo"`
	Kind             *string  `json:"tipo_tratamiento"`
	Dose             *string  `json:"dosis"`
	Frequency        *string  `json:"frecuencia_aplicacion"`
	Notes            *string  `json:"notas_adicionales"`
	DoseValue        *float64 `json:"dosis_valor"`
	DoseUnit         *string  `json:"dosis_unidad"`
	ProductPerPlant  *float64 `json:"dosis_por_planta_ml"`
	WaterPerPlant    *float64 `json:"agua_por_planta_ml"`
}

// DiseaseInfo is a disease with its recommended treatments.
type DiseaseInfo struct {
	Info            Disease     `json:"info"`
	Recommendations []Treatment `json:"recommendations"`
}

// TreatmentDose is the public projection of a treatment used by dose screens.
type TreatmentDose struct {
	ID               int64   `json:"id"`
	CommercialName   string  `json:"nombre_comercial"`
	ActiveIngredient string  `json:"ingrediente_activo"`
	Kind             *string `json:"tipo_tratamiento"`
	Dose             float64 `json:"dosis"`
	Unit             string  `json:"unidad_medida"`
}

// Dose is the amount of product and water needed for a number of plants.
type Dose struct {
	ProductMl   float64 `json:"total_producto_ml"`
	WaterLitres float64 `json:"total_agua_litros"`
	Message     string  `json:"mensaje"`
}
