package drata

import (
	"bytes"
	"encoding/json"
)

// Version holds a policy version, which the API serves either as a number or
// as a string.
type Version string

func (v *Version) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Version(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = Version(n.String())
	return nil
}

func (v Version) String() string { return string(v) }

type UserRef struct {
	ID        int    `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
}

// FullName joins first and last name, falling back to Name.
func (u *UserRef) FullName() string {
	if u == nil {
		return ""
	}
	full := u.FirstName
	if u.LastName != "" {
		if full != "" {
			full += " "
		}
		full += u.LastName
	}
	if full == "" {
		return u.Name
	}
	return full
}

func (u *UserRef) EmailAddress() string {
	if u == nil {
		return ""
	}
	return u.Email
}

type Control struct {
	ID            int      `json:"id"`
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	IsReady       bool     `json:"isReady"`
	HasOwner      bool     `json:"hasOwner"`
	IsMonitored   bool     `json:"isMonitored"`
	HasEvidence   bool     `json:"hasEvidence"`
	ArchivedAt    *string  `json:"archivedAt"`
	FrameworkTags []string `json:"frameworkTags"`
}

type ControlRef struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type MonitorInstance struct {
	FailedTestDescription         string `json:"failedTestDescription"`
	RemedyDescription             string `json:"remedyDescription"`
	EvidenceCollectionDescription string `json:"evidenceCollectionDescription"`
}

type Monitor struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	CheckResultStatus string            `json:"checkResultStatus"`
	CheckStatus       string            `json:"checkStatus"`
	Priority          string            `json:"priority"`
	LastCheck         string            `json:"lastCheck"`
	Controls          []ControlRef      `json:"controls"`
	MonitorInstances  []MonitorInstance `json:"monitorInstances"`
}

// ControlCodes lists the codes of the controls the monitor is linked to.
func (m Monitor) ControlCodes() []string {
	codes := make([]string, 0, len(m.Controls))
	for _, c := range m.Controls {
		codes = append(codes, c.Code)
	}
	return codes
}

// CoversControl reports whether the monitor is linked to the control code.
func (m Monitor) CoversControl(code string) bool {
	for _, c := range m.Controls {
		if c.Code == code {
			return true
		}
	}
	return false
}

type Personnel struct {
	ID                            int             `json:"id"`
	User                          *UserRef        `json:"user"`
	EmploymentStatus              string          `json:"employmentStatus"`
	DevicesCount                  int             `json:"devicesCount"`
	DevicesFailingComplianceCount int             `json:"devicesFailingComplianceCount"`
	StartDate                     string          `json:"startDate"`
	SeparationDate                string          `json:"separationDate"`
	ComplianceChecks              json.RawMessage `json:"complianceChecks,omitempty"`
	ComplianceTests               json.RawMessage `json:"complianceTests,omitempty"`
	Devices                       json.RawMessage `json:"devices,omitempty"`
}

type PolicyRef struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Version Version `json:"version"`
}

type Policy struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Version     Version `json:"version"`
	Status      string  `json:"status"`
	UpdatedAt   string  `json:"updatedAt"`
	PublishedAt string  `json:"publishedAt"`
}

type UserPolicy struct {
	ID             int        `json:"id"`
	Policy         *PolicyRef `json:"policy"`
	User           *UserRef   `json:"user"`
	CreatedAt      string     `json:"createdAt"`
	AcknowledgedAt *string    `json:"acknowledgedAt"`
}

type ProviderType struct {
	Value string `json:"value"`
}

type Connection struct {
	ID            int            `json:"id"`
	ClientType    string         `json:"clientType"`
	State         string         `json:"state"`
	Connected     bool           `json:"connected"`
	ConnectedAt   string         `json:"connectedAt"`
	FailedAt      *string        `json:"failedAt"`
	ProviderTypes []ProviderType `json:"providerTypes"`
}

// Failed reports whether the connection carries a failure timestamp.
func (c Connection) Failed() bool {
	return c.FailedAt != nil && *c.FailedAt != ""
}

type Vendor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Website   string `json:"website"`
	Status    string `json:"status"`
	RiskLevel string `json:"riskLevel"`
	Category  string `json:"category"`
}

type Device struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	SerialNumber string   `json:"serialNumber"`
	Platform     string   `json:"platform"`
	OSVersion    string   `json:"osVersion"`
	User         *UserRef `json:"user"`
}

type Asset struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	AssetType     string   `json:"assetType"`
	AssetProvider string   `json:"assetProvider"`
	Owner         *UserRef `json:"owner"`
	Company       string   `json:"company"`
}

type Event struct {
	ID          ID       `json:"id"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	CreatedAt   string   `json:"createdAt"`
	User        *UserRef `json:"user"`
}

type User struct {
	ID        int             `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	JobTitle  string          `json:"jobTitle"`
	Roles     json.RawMessage `json:"roles,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

// ID accepts identifiers served as numbers or as strings (events use UUIDs).
type ID string

func (i *ID) UnmarshalJSON(b []byte) error {
	var v Version
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = ID(v)
	return nil
}

