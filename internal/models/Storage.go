package models

const StorageVersion = 1

// SlipData is the persisted form of a reader's draft slip.
type SlipData struct {
	Commitments []*Commitment           `json:"commitments"`
	Engagements []*EngagementCommitment `json:"engagements"`
}

// ReaderData holds everything one reader owns. A commitment ID appears in at
// most one of Slip, Active/Engagements and Settled.
type ReaderData struct {
	Slip        SlipData                   `json:"slip"`
	Active      []*Commitment              `json:"active"`
	Progress    map[string]*ProgressRecord `json:"progress"`
	Engagements []*EngagementCommitment    `json:"engagements"`
	Settled     []*SettledCommitment       `json:"settled"`
}

// Storage is the versioned persistence envelope.
type Storage struct {
	Version int                    `json:"version"`
	Readers map[string]*ReaderData `json:"readers"`
}
