package domain

var (
	MessageSuccessGetIngredients      = "success get ingredients"
	MessageSuccessGetIngredientDetail = "success get ingredient detail"

	MessageFailedGetIngredients      = "failed to get ingredients"
	MessageFailedGetIngredientDetail = "failed to get ingredient detail"
)

type IngredientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}
