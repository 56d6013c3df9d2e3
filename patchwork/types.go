package patchwork

import "time"

// Submitter identifies who posted a series or patch. Email may be empty;
// the API sometimes omits it.
type Submitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PatchRef is the abbreviated patch entry returned inline with a series
// listing. State is free text as the tracker reports it and is frequently
// empty.
type PatchRef struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Series is one submission event: a named, ordered bundle of patches.
// Total is the declared patch count and may exceed len(Patches) when the
// listing is partial; that is tolerated, never fatal.
type Series struct {
	ID             int
	Name           string
	Date           time.Time
	Submitter      Submitter
	Total          int
	Patches        []PatchRef
	HasCoverLetter bool
	WebURL         string
}

// Patch is a fully fetched patch: the detail record plus the raw mbox body.
// Immutable once fetched.
type Patch struct {
	ID        int
	Name      string
	Date      time.Time
	Submitter Submitter
	Content   string
	State     string
	WebURL    string
	MboxURL   string
}

// Comment is one discussion entry on a patch.
type Comment struct {
	ID        int
	Submitter Submitter
	Date      time.Time
	Content   string
}

// Project is a tracker project listing entry, used only by the projects
// command.
type Project struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LinkName string `json:"link_name"`
}
