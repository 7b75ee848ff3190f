package models

// PullResponse is the JSON body of a successful pull call.
//
// Checkpoint is keyed by the collection's declared key field name plus
// "serverTimestamp"; it is null only when the input checkpoint was null and
// the owner has no documents in the collection.
type PullResponse struct {
	Documents  []WireDocument    `json:"documents"`
	Checkpoint map[string]string `json:"checkpoint"`
}

// AppBuildInfo describes the running server build, exposed via /api/version/.
type AppBuildInfo struct {
	Version string `json:"version"`
	Date    string `json:"date,omitempty"`
	Commit  string `json:"commit,omitempty"`
}
