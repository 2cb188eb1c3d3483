package vehicle

// decoupledSuspension treats camber and slip angle as independent of
// lateral acceleration — the simplest suspension variant, appropriate for a
// point-mass model with no roll degree of freedom.
type decoupledSuspension struct {
	staticCamber float64
}

// directActuationSuspension derives camber from lateral acceleration via a
// fixed gain, modelling a suspension whose camber is actuated directly by
// body roll rather than decoupled from it.
type directActuationSuspension struct {
	staticCamber float64
	camberGain   float64
}

func init() {
	RegisterSuspensionModel("decoupled", newDecoupledSuspension)
	RegisterSuspensionModel("direct_actuation", newDirectActuationSuspension)
}

func newDecoupledSuspension(params map[string]float64) (SuspensionModel, error) {
	return &decoupledSuspension{staticCamber: params["static_camber"]}, nil
}

func newDirectActuationSuspension(params map[string]float64) (SuspensionModel, error) {
	return &directActuationSuspension{
		staticCamber: params["static_camber"],
		camberGain:   params["camber_gain"],
	}, nil
}

func (s *decoupledSuspension) Attitude(lateralAcceleration float64) (camber, slipAngle float64) {
	return s.staticCamber, 0
}

func (s *directActuationSuspension) Attitude(lateralAcceleration float64) (camber, slipAngle float64) {
	return s.staticCamber + s.camberGain*lateralAcceleration, 0
}
