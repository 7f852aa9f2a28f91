package course

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
)

var (
	vehicleTypeTag  = "vehicletype"
	vehicleTypeText = "{0} must be one of " + strings.Join(vehicleNames(), ", ")

	errInvalidVehicle   = errors.New("invalid vehicle type")
	errDuplicateVehicle = errors.New("a course for this vehicle type already exists")
	errFinishedTwice    = errors.New("this category already has a finished course")
)

func vehicleNames() []string {
	names := make([]string, 0, len(VehicleTypes))
	for _, vt := range VehicleTypes {
		names = append(names, string(vt))
	}
	return names
}

// InitValidators registers the course validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(vehicleTypeTag, vehicleTypeValidation)
	core.RegisterCustomTranslation(validate, translator, vehicleTypeTag, vehicleTypeText)
}

// vehicleTypeValidation only accepts real vehicles, "finished" is set through the finish action.
func vehicleTypeValidation(fl validator.FieldLevel) bool {
	return VehicleType(fl.Field().String()).IsVehicle()
}
