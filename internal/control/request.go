package control

import "strconv"

// DefaultNudgeCM is how far a d-pad nudge moves the vehicle.
const DefaultNudgeCM = 30

// RequestFor builds the remote command for an action. Flips carry a
// direction code and nudges carry a distance in centimetres.
func RequestFor(a Action, nudgeCM int) Request {
	if nudgeCM <= 0 {
		nudgeCM = DefaultNudgeCM
	}
	dist := strconv.Itoa(nudgeCM)

	switch a {
	case ActionTakeoff:
		return Request{Action: a, Name: "takeoff"}
	case ActionLand:
		return Request{Action: a, Name: "land"}
	case ActionFlipX:
		return Request{Action: a, Name: "flip", Arg: "f"}
	case ActionFlipCircle:
		return Request{Action: a, Name: "flip", Arg: "r"}
	case ActionFlipSquare:
		return Request{Action: a, Name: "flip", Arg: "l"}
	case ActionFlipTriangle:
		return Request{Action: a, Name: "flip", Arg: "b"}
	case ActionNudgeUp:
		return Request{Action: a, Name: "up", Arg: dist}
	case ActionNudgeDown:
		return Request{Action: a, Name: "down", Arg: dist}
	case ActionNudgeLeft:
		return Request{Action: a, Name: "left", Arg: dist}
	case ActionNudgeRight:
		return Request{Action: a, Name: "right", Arg: dist}
	default:
		return Request{Action: a, Name: string(a)}
	}
}
