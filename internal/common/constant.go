package common

// AccessTokenHeaderName is the legacy header the mobile client uses to carry
// the access token. "Authorization: Bearer" is accepted as well.
const AccessTokenHeaderName = "x-access-token"

// NothingDetectedLabel is the label the classifier reports when no candidate
// was returned for an image.
const NothingDetectedLabel = "No se detectó ninguna plaga"

// HealthyLeafLabel is the classifier label of a leaf without disease.
const HealthyLeafLabel = "Hoja sana"

// UnrecognizedImageLabel replaces low-confidence or empty predictions.
const UnrecognizedImageLabel = "Imagen no reconocida"
