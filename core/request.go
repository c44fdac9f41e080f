package core

// Request is the external input contract of the dispatch engine. History is
// the complete prior conversation in chronological order; IdentityHint is an
// optional out-of-band identity supplied by the transport.
type Request struct {
	UserMessage         string    `json:"userMessage"`
	ConversationHistory []Message `json:"conversationHistory"`
	IdentityHint        string    `json:"identityHint,omitempty"`
}

// Response is the dual-format output of one dispatch call.
//
// FormattedText carries the rich (markdown-capable) reply, SpokenSummary a
// short plain-text equivalent for voice surfaces. InvocationTrace records
// every capability invoked while producing the reply. Annotations are
// system-role entries the caller must append to the conversation history
// verbatim, alongside the assistant turn; demo replay state is re-derived
// from them on the next call.
type Response struct {
	FormattedText   string    `json:"formattedText"`
	SpokenSummary   string    `json:"spokenSummary"`
	InvocationTrace string    `json:"invocationTrace"`
	Identity        string    `json:"identity"`
	Annotations     []Message `json:"annotations,omitempty"`
}
