package frame

// Button action types understood by the host feed.
const (
	ActionPost = "post"
	ActionLink = "link"
)

// Default post-back button labels, fixed parts of the frame contract.
const (
	startButtonLabel = "Start Streak"
	logButtonLabel   = "Log Today"
)

// Button is one action the host feed renders under the frame image.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}

// Response is the fixed presentational payload for one frame render.
type Response struct {
	Type    string   `json:"type"`
	Image   string   `json:"image"`
	Buttons []Button `json:"buttons"`
}

// Interaction is the host's button-press payload. UntrustedData is the
// host's opaque interaction envelope; the responder ignores it.
type Interaction struct {
	ButtonIndex   int                    `json:"buttonIndex"`
	UntrustedData map[string]interface{} `json:"untrustedData,omitempty"`
}

// Respond maps a button press to one of three fixed payloads. It is a pure
// function of the interaction with no access to session or chain state.
func Respond(cfg *Config, in Interaction) Response {
	switch in.ButtonIndex {
	case 1:
		return Response{
			Type:  "frame",
			Image: "/api/og?action=start",
			Buttons: []Button{
				{Label: cfg.Buttons.Start.Label, Action: ActionLink, Target: cfg.Buttons.Start.Target},
			},
		}
	case 2:
		return Response{
			Type:  "frame",
			Image: "/api/og?action=log",
			Buttons: []Button{
				{Label: cfg.Buttons.Log.Label, Action: ActionLink, Target: cfg.Buttons.Log.Target},
			},
		}
	default:
		return Response{
			Type:  "frame",
			Image: "/api/og",
			Buttons: []Button{
				{Label: startButtonLabel, Action: ActionPost},
				{Label: logButtonLabel, Action: ActionPost},
			},
		}
	}
}
