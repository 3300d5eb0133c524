package bridge

// Action tags every bridge request. The set is closed: dispatch switches over
// these values and anything else is answered with a descriptive failure, never
// silently dropped.
type Action string

const (
	ActionInterviewStart  Action = "interviewStart"
	ActionInterviewStop   Action = "interviewStop"
	ActionSpeechToText    Action = "speechToText"
	ActionTextToSpeech    Action = "textToSpeech"
	ActionSendChatMessage Action = "sendChatMessage"
)

// Known reports whether a is part of the closed action set.
func (a Action) Known() bool {
	switch a {
	case ActionInterviewStart, ActionInterviewStop, ActionSpeechToText, ActionTextToSpeech, ActionSendChatMessage:
		return true
	}
	return false
}

// Request is the tagged union sent from the agent context to the coordinator
// daemon. Exactly one Response is produced per Request; the ID correlates the
// pair on the shared connection.
type Request struct {
	ID     string `json:"id,omitempty"`
	Action Action `json:"action"`

	// speechToText
	AudioBlob string `json:"audioBlob,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`

	// textToSpeech
	Text string `json:"text,omitempty"`

	// sendChatMessage
	Message string `json:"message,omitempty"`
}

// Response carries a success discriminator plus the payload field appropriate
// to the action, or an error string.
type Response struct {
	ID        string `json:"id,omitempty"`
	Success   bool   `json:"success"`
	Text      string `json:"text,omitempty"`
	AudioData string `json:"audioData,omitempty"`
	Error     string `json:"error,omitempty"`
}

func ok(id string) Response              { return Response{ID: id, Success: true} }
func okText(id, text string) Response    { return Response{ID: id, Success: true, Text: text} }
func okAudio(id, data string) Response   { return Response{ID: id, Success: true, AudioData: data} }
func fail(id, detail string) Response    { return Response{ID: id, Success: false, Error: detail} }
func failErr(id string, err error) Response { return fail(id, err.Error()) }
