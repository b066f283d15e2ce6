package flex

import (
	"errors"
	"fmt"

	"github.com/kilianp07/flexmodel/internal/validate"
)

// Kind identifies which activation record an asset or cost model expects.
type Kind string

const (
	// KindStorage covers assets with separate draw (charge) and inject
	// (discharge) power channels.
	KindStorage Kind = "storage"
	// KindSettlement covers unconstrained market positions.
	KindSettlement Kind = "settlement"
)

// Activation is one commanded action for a single time step.
type Activation interface {
	Kind() Kind
	Validate() error
}

// StorageActivation commands a storage-like asset. DtHours is required.
type StorageActivation struct {
	DrawKW   float64 `validate:"gte=0"`
	InjectKW float64 `validate:"gte=0"`
	DtHours  float64 `validate:"required,gt=0"`
}

func (StorageActivation) Kind() Kind { return KindStorage }

func (a StorageActivation) Validate() error { return checkFields(a) }

// EnergyDraw returns the energy drawn during the step in kWh.
func (a StorageActivation) EnergyDraw() float64 { return a.DrawKW * a.DtHours }

// EnergyInject returns the energy injected during the step in kWh.
func (a StorageActivation) EnergyInject() float64 { return a.InjectKW * a.DtHours }

// SettlementActivation commands a market settlement position. DtHours is
// required.
type SettlementActivation struct {
	ImportKW float64 `validate:"gte=0"`
	ExportKW float64 `validate:"gte=0"`
	DtHours  float64 `validate:"required,gt=0"`
}

func (SettlementActivation) Kind() Kind { return KindSettlement }

func (a SettlementActivation) Validate() error { return checkFields(a) }

// EnergyImport returns the energy bought during the step in kWh.
func (a SettlementActivation) EnergyImport() float64 { return a.ImportKW * a.DtHours }

// EnergyExport returns the energy sold during the step in kWh.
func (a SettlementActivation) EnergyExport() float64 { return a.ExportKW * a.DtHours }

// AsStorage extracts and validates a storage activation.
func AsStorage(act Activation) (StorageActivation, error) {
	var a StorageActivation
	switch v := act.(type) {
	case StorageActivation:
		a = v
	case *StorageActivation:
		if v == nil {
			return a, fmt.Errorf("%w: nil storage activation", ErrMissingField)
		}
		a = *v
	default:
		return a, kindMismatch(KindStorage, act)
	}
	return a, a.Validate()
}

// AsSettlement extracts and validates a settlement activation.
func AsSettlement(act Activation) (SettlementActivation, error) {
	var a SettlementActivation
	switch v := act.(type) {
	case SettlementActivation:
		a = v
	case *SettlementActivation:
		if v == nil {
			return a, fmt.Errorf("%w: nil settlement activation", ErrMissingField)
		}
		a = *v
	default:
		return a, kindMismatch(KindSettlement, act)
	}
	return a, a.Validate()
}

func kindMismatch(want Kind, act Activation) error {
	if act == nil {
		return fmt.Errorf("%w: want %s, got nil", ErrActivationKind, want)
	}
	return fmt.Errorf("%w: want %s, got %s", ErrActivationKind, want, act.Kind())
}

func checkFields(a any) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var fe *validate.FieldsError
	if errors.As(err, &fe) && len(fe.Missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingField, fe)
	}
	return fmt.Errorf("%w: %v", ErrInvalidActivation, err)
}
