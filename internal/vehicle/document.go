package vehicle

import (
	"encoding/json"

	"github.com/fsae-sim/laptimesim/internal/raceerr"
)

// taggedComponent is the raw form of a polymorphic subsystem block: a
// discriminator field plus the rest of the object as flat numeric params.
type taggedComponent struct {
	Type   string             `json:"-"`
	Params map[string]float64 `json:"-"`
	raw    map[string]json.RawMessage
}

func (t *taggedComponent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.raw = raw
	t.Params = map[string]float64{}
	for _, key := range []string{"model_type", "suspension_type", "tyre_model", "powertrain_model"} {
		if v, ok := raw[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				t.Type = s
			}
			delete(raw, key)
		}
	}
	for k, v := range raw {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			t.Params[k] = f
		}
	}
	return nil
}

// Document is the top-level vehicle JSON document: metadata plus the
// subsystems that feed into VehicleParams. Driver/brakes/steering/
// transmission carry fields consumed by reporting and the component
// library, not by the point-mass dynamics themselves.
type Document struct {
	Metadata map[string]json.RawMessage `json:"metadata"`
	Driver   map[string]json.RawMessage `json:"driver"`
	Aero     struct {
		Model taggedComponent `json:"aero_model"`
	} `json:"aero"`
	Brakes       map[string]json.RawMessage `json:"brakes"`
	Inertia      struct {
		CurbMass             float64 `json:"curb_mass"`
		EquivalentMassFactor float64 `json:"equivalent_mass_factor"`
	} `json:"inertia"`
	Powertrain   taggedComponent `json:"powertrain"`
	Steering     map[string]json.RawMessage `json:"steering"`
	Suspension   struct {
		Front taggedComponent `json:"front"`
		Rear  taggedComponent `json:"rear"`
	} `json:"suspension"`
	Transmission struct {
		FinalDriveRatio float64 `json:"final_drive_ratio"`
	} `json:"transmission"`
	Tyres struct {
		Front struct {
			Model      taggedComponent `json:"tyre_model"`
			TyreRadius float64         `json:"tyre_radius"`
		} `json:"front"`
		Rear struct {
			Model      taggedComponent `json:"tyre_model"`
			TyreRadius float64         `json:"tyre_radius"`
		} `json:"rear"`
	} `json:"tyres"`
}

// ParseDocument decodes a vehicle JSON document. Component libraries are
// not consulted here — string-named component references are an external
// collaborator's concern; this parser only handles subsystems inlined
// directly in the document, which is sufficient to drive the point-mass
// model end to end.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, raceerr.Wrap(raceerr.InvalidVehicleConfig, "malformed vehicle document", nil, err)
	}
	return &doc, nil
}

// ToVehicleParams converts a parsed Document into the flat VehicleParams a
// ModelFactory consumes.
func (d *Document) ToVehicleParams() (VehicleParams, error) {
	if d.Aero.Model.Type == "" {
		return VehicleParams{}, raceerr.VehicleConfig("aero.aero_model missing model_type", nil)
	}
	if d.Suspension.Front.Type == "" || d.Suspension.Rear.Type == "" {
		return VehicleParams{}, raceerr.VehicleConfig("suspension front/rear missing suspension_type", nil)
	}
	if d.Tyres.Front.Model.Type == "" || d.Tyres.Rear.Model.Type == "" {
		return VehicleParams{}, raceerr.VehicleConfig("tyres front/rear missing tyre_model", nil)
	}
	if d.Powertrain.Type == "" {
		return VehicleParams{}, raceerr.VehicleConfig("powertrain missing powertrain_model", nil)
	}
	if d.Inertia.CurbMass <= 0 {
		return VehicleParams{}, raceerr.VehicleConfig("inertia.curb_mass must be positive", map[string]any{"curb_mass": d.Inertia.CurbMass})
	}

	tyreRadius := d.Tyres.Rear.TyreRadius
	if tyreRadius <= 0 {
		tyreRadius = d.Tyres.Front.TyreRadius
	}

	return VehicleParams{
		CurbMass:             d.Inertia.CurbMass,
		EquivalentMassFactor: d.Inertia.EquivalentMassFactor,
		FinalDriveRatio:      d.Transmission.FinalDriveRatio,
		TyreRadius:           tyreRadius,
		Aero:                 SubsystemConfig{Type: d.Aero.Model.Type, Params: d.Aero.Model.Params},
		SuspensionFront:      SubsystemConfig{Type: d.Suspension.Front.Type, Params: d.Suspension.Front.Params},
		SuspensionRear:       SubsystemConfig{Type: d.Suspension.Rear.Type, Params: d.Suspension.Rear.Params},
		TyreFront:            SubsystemConfig{Type: d.Tyres.Front.Model.Type, Params: d.Tyres.Front.Model.Params},
		TyreRear:             SubsystemConfig{Type: d.Tyres.Rear.Model.Type, Params: d.Tyres.Rear.Model.Params},
		Powertrain:           SubsystemConfig{Type: d.Powertrain.Type, Params: d.Powertrain.Params},
	}, nil
}

// Load parses a vehicle JSON document and builds its Model, using the
// default "point_mass" vehicle model variant.
func Load(data []byte, gravity, airDensity float64) (Model, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	params, err := doc.ToVehicleParams()
	if err != nil {
		return nil, err
	}
	return NewModel("point_mass", params, gravity, airDensity)
}
