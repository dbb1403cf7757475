package engine

import (
	"encoding/json"
	"sort"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/library"
)

// Class decides how the history treats an action.
type Class string

// Action classes.
const (
	ClassCommitted Class = "committed"
	ClassLive      Class = "live"
	ClassLayout    Class = "layout"
)

// Action is a discrete state change. The set of actions is closed.
type Action interface {
	// Kind is the action's wire name, as used by [DecodeAction].
	Kind() string
	// Class is fixed per action type by the embedded marker.
	Class() Class

	apply(r *reducer) error
}

type committed struct{}

func (committed) Class() Class { return ClassCommitted }

type live struct{}

func (live) Class() Class { return ClassLive }

type layout struct{}

func (layout) Class() Class { return ClassLayout }

// =============================================================================
// Registry Actions
// =============================================================================

// AddElement creates a node or region. Template is required for node
// variants; Data is shallow-merged into the new element's state.
type AddElement struct {
	committed
	Type     element.Type      `json:"type"`
	Position geom.Point        `json:"position"`
	Template library.Component `json:"template"`
	Data     element.Patch     `json:"data,omitempty"`
}

func (AddElement) Kind() string { return "addElement" }

// AddLiveElement creates a region or annotation that is excluded from history.
type AddLiveElement struct {
	live
	Type       element.Type       `json:"type"`
	Position   geom.Point         `json:"position"`
	Dimensions element.Dimensions `json:"dimensions"`
}

func (AddLiveElement) Kind() string { return "addLiveElement" }

// UpdateElement shallow-merges Data into an element's current state.
type UpdateElement struct {
	committed
	ID   string        `json:"id"`
	Type element.Type  `json:"type"`
	Data element.Patch `json:"data"`
}

func (UpdateElement) Kind() string { return "updateElement" }

// UpdateLiveElement is the unrecorded form of UpdateElement.
type UpdateLiveElement struct {
	live
	ID   string        `json:"id"`
	Type element.Type  `json:"type"`
	Data element.Patch `json:"data"`
}

func (UpdateLiveElement) Kind() string { return "updateLiveElement" }

// BatchUpdateLiveElement applies several live updates in one dispatch.
type BatchUpdateLiveElement struct {
	live
	Updates []UpdateLiveElement `json:"updates"`
}

func (BatchUpdateLiveElement) Kind() string { return "batchUpdateLiveElement" }

// DeleteElements removes elements and every wire attached to them.
type DeleteElements struct {
	committed
	IDs []string `json:"ids"`
}

func (DeleteElements) Kind() string { return "deleteElements" }

// DeleteLiveElements removes live elements without wire bookkeeping.
type DeleteLiveElements struct {
	live
	IDs []string `json:"ids"`
}

func (DeleteLiveElements) Kind() string { return "deleteLiveElements" }

// MoveElement places an element and drags its wire endpoints along.
type MoveElement struct {
	committed
	ID       string     `json:"id"`
	Position geom.Point `json:"position"`
}

func (MoveElement) Kind() string { return "moveElement" }

// Move is one entry of MoveElements.
type Move struct {
	ID       string     `json:"id"`
	Position geom.Point `json:"position"`
}

// MoveElements finalizes a multi-element drag as a single undo step.
type MoveElements struct {
	committed
	Moves []Move `json:"moves"`
}

func (MoveElements) Kind() string { return "moveElements" }

// RegisterElement records rendered dimensions. Adjustment is applied to the
// position on first placement only, never to restored elements.
type RegisterElement struct {
	layout
	ID         string             `json:"id"`
	Dimensions element.Dimensions `json:"dimensions"`
	Adjustment *geom.Point        `json:"adjustment,omitempty"`
}

func (RegisterElement) Kind() string { return "registerElement" }

// RegisterElementAnchor records the local offset of one port.
type RegisterElementAnchor struct {
	layout
	ElementID string     `json:"elementId"`
	AnchorID  string     `json:"anchorId"`
	Position  geom.Point `json:"position"`
}

func (RegisterElementAnchor) Kind() string { return "registerElementAnchor" }

// ToggleVisibility flips the visibility of every listed node.
type ToggleVisibility struct {
	committed
	IDs []string `json:"ids"`
}

func (ToggleVisibility) Kind() string { return "toggleVisibility" }

// SetVisibility sets the visibility of every listed node.
type SetVisibility struct {
	committed
	IDs        []string `json:"ids"`
	Visibility string   `json:"visibility"`
}

func (SetVisibility) Kind() string { return "setVisibility" }

// SetMode changes the editor mode.
type SetMode struct {
	live
	Mode Mode `json:"mode"`
}

func (SetMode) Kind() string { return "setMode" }

// =============================================================================
// Wire Actions
// =============================================================================

// StartLiveWires begins a wire gesture at Origin.
type StartLiveWires struct {
	live
	Templates []element.WireTemplate `json:"templates"`
	Origin    element.PortRef        `json:"origin"`
}

func (StartLiveWires) Kind() string { return "startLiveWires" }

// UpdateLiveWires moves the free endpoint of every live wire.
type UpdateLiveWires struct {
	live
	Position geom.Point `json:"position"`
}

func (UpdateLiveWires) Kind() string { return "updateLiveWires" }

// CaptureLiveWires snaps the live wires to a hovered port.
type CaptureLiveWires struct {
	live
	Type        element.PortKind `json:"type"`
	ElementID   string           `json:"elementId"`
	ParameterID string           `json:"parameterId"`
}

func (CaptureLiveWires) Kind() string { return "captureLiveWires" }

// ReleaseLiveWires clears the capture without ending the gesture.
type ReleaseLiveWires struct {
	live
}

func (ReleaseLiveWires) Kind() string { return "releaseLiveWires" }

// EndMode selects how EndLiveWires applies the gesture.
type EndMode string

// Wire end modes.
const (
	EndDefault   EndMode = "default"
	EndAdd       EndMode = "add"
	EndRemove    EndMode = "remove"
	EndTranspose EndMode = "transpose"
	EndCancel    EndMode = "cancel"
)

// EndLiveWires ends the gesture.
type EndLiveWires struct {
	committed
	Mode EndMode `json:"mode"`
}

func (EndLiveWires) Kind() string { return "endLiveWires" }

// SetProvisionalWire previews a connection between two ports.
type SetProvisionalWire struct {
	live
	From element.PortRef `json:"from"`
	To   element.PortRef `json:"to"`
}

func (SetProvisionalWire) Kind() string { return "setProvisionalWire" }

// ClearProvisionalWire removes the connection preview.
type ClearProvisionalWire struct {
	live
}

func (ClearProvisionalWire) Kind() string { return "clearProvisionalWire" }

// =============================================================================
// Selection & Motion Actions
// =============================================================================

// Criterion is how UpdateSelection stages ids.
type Criterion string

// Selection criteria.
const (
	ByID     Criterion = "id"
	ByRegion Criterion = "region"
)

// SelectionMode is how staged ids combine with the current selection.
type SelectionMode string

// Selection modes.
const (
	SelectDefault SelectionMode = "default"
	SelectAdd     SelectionMode = "add"
	SelectRemove  SelectionMode = "remove"
	SelectToggle  SelectionMode = "toggle"
)

// UpdateSelection recomputes the selection.
type UpdateSelection struct {
	committed
	Type                Criterion     `json:"type"`
	IDs                 []string      `json:"ids,omitempty"`
	Region              geom.Region   `json:"region"`
	IncludeIntersection bool          `json:"includeIntersection,omitempty"`
	Mode                SelectionMode `json:"mode"`
}

func (UpdateSelection) Kind() string { return "updateSelection" }

// PrepareLiveMotion caches what must move with Targets during a drag
// started on Anchor.
type PrepareLiveMotion struct {
	live
	Anchor  string   `json:"anchor"`
	Targets []string `json:"targets"`
}

func (PrepareLiveMotion) Kind() string { return "prepareLiveMotion" }

// DispatchLiveMotion moves the cached set by Delta.
type DispatchLiveMotion struct {
	live
	Delta geom.Point `json:"delta"`
}

func (DispatchLiveMotion) Kind() string { return "dispatchLiveMotion" }

// =============================================================================
// Decoding
// =============================================================================

var actionFactories = map[string]func() Action{
	"addElement":             func() Action { return &AddElement{} },
	"addLiveElement":         func() Action { return &AddLiveElement{} },
	"updateElement":          func() Action { return &UpdateElement{} },
	"updateLiveElement":      func() Action { return &UpdateLiveElement{} },
	"batchUpdateLiveElement": func() Action { return &BatchUpdateLiveElement{} },
	"deleteElements":         func() Action { return &DeleteElements{} },
	"deleteLiveElements":     func() Action { return &DeleteLiveElements{} },
	"moveElement":            func() Action { return &MoveElement{} },
	"moveElements":           func() Action { return &MoveElements{} },
	"registerElement":        func() Action { return &RegisterElement{} },
	"registerElementAnchor":  func() Action { return &RegisterElementAnchor{} },
	"toggleVisibility":       func() Action { return &ToggleVisibility{} },
	"setVisibility":          func() Action { return &SetVisibility{} },
	"setMode":                func() Action { return &SetMode{} },
	"startLiveWires":         func() Action { return &StartLiveWires{} },
	"updateLiveWires":        func() Action { return &UpdateLiveWires{} },
	"captureLiveWires":       func() Action { return &CaptureLiveWires{} },
	"releaseLiveWires":       func() Action { return &ReleaseLiveWires{} },
	"endLiveWires":           func() Action { return &EndLiveWires{} },
	"setProvisionalWire":     func() Action { return &SetProvisionalWire{} },
	"clearProvisionalWire":   func() Action { return &ClearProvisionalWire{} },
	"updateSelection":        func() Action { return &UpdateSelection{} },
	"prepareLiveMotion":      func() Action { return &PrepareLiveMotion{} },
	"dispatchLiveMotion":     func() Action { return &DispatchLiveMotion{} },
}

// Kinds returns every action name accepted by DecodeAction, sorted.
func Kinds() []string {
	out := make([]string, 0, len(actionFactories))
	for k := range actionFactories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Envelope is the JSON form of an action: {"type": kind, "payload": {...}}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeAction decodes the payload of the named action.
func DecodeAction(kind string, payload json.RawMessage) (Action, error) {
	factory, ok := actionFactories[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidAction, "unknown action %q", kind)
	}
	ptr := factory()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, ptr); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAction, err, "decode %s payload", kind)
		}
	}
	return deref(ptr), nil
}

// Decode decodes the enveloped action.
func (e Envelope) Decode() (Action, error) {
	return DecodeAction(e.Type, e.Payload)
}

// Encode wraps an action in an Envelope.
func Encode(a Action) (Envelope, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return Envelope{}, errors.Wrap(errors.ErrCodeInvalidAction, err, "encode %s", a.Kind())
	}
	return Envelope{Type: a.Kind(), Payload: payload}, nil
}

// DecodeScript decodes a JSON array of envelopes.
func DecodeScript(data []byte) ([]Action, error) {
	var envs []Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAction, err, "decode action script")
	}
	out := make([]Action, 0, len(envs))
	for i, env := range envs {
		a, err := env.Decode()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAction, err, "action %d", i)
		}
		out = append(out, a)
	}
	return out, nil
}

// deref returns the value form of a decoded action so that decoded and
// hand-built actions compare and switch identically.
func deref(a Action) Action {
	switch v := a.(type) {
	case *AddElement:
		return *v
	case *AddLiveElement:
		return *v
	case *UpdateElement:
		return *v
	case *UpdateLiveElement:
		return *v
	case *BatchUpdateLiveElement:
		return *v
	case *DeleteElements:
		return *v
	case *DeleteLiveElements:
		return *v
	case *MoveElement:
		return *v
	case *MoveElements:
		return *v
	case *RegisterElement:
		return *v
	case *RegisterElementAnchor:
		return *v
	case *ToggleVisibility:
		return *v
	case *SetVisibility:
		return *v
	case *SetMode:
		return *v
	case *StartLiveWires:
		return *v
	case *UpdateLiveWires:
		return *v
	case *CaptureLiveWires:
		return *v
	case *ReleaseLiveWires:
		return *v
	case *EndLiveWires:
		return *v
	case *SetProvisionalWire:
		return *v
	case *ClearProvisionalWire:
		return *v
	case *UpdateSelection:
		return *v
	case *PrepareLiveMotion:
		return *v
	case *DispatchLiveMotion:
		return *v
	}
	return a
}
