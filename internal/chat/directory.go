package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Directory lists the addressable peers and groups. Every call is a full
// refresh; nothing is cached between calls and nothing is mutated in
// place.
type Directory struct {
	base string
	http *http.Client
	self Identity
}

func NewDirectory(baseURL string, client *http.Client, self Identity) *Directory {
	return &Directory{base: baseURL, http: client, self: self}
}

// Peers returns every known user except the session's own identity.
func (d *Directory) Peers(ctx context.Context) ([]Peer, error) {
	var users []Peer
	if err := getJSON(ctx, d.http, d.base+"/api/users", &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	peers := make([]Peer, 0, len(users))
	for _, u := range users {
		if u.Username == d.self.Username {
			continue
		}
		peers = append(peers, u)
	}
	return peers, nil
}

type groupsResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Groups  []GroupSummary `json:"groups"`
}

// Groups returns every group. An empty list is a valid state, distinct
// from ErrDirectoryUnavailable.
func (d *Directory) Groups(ctx context.Context) ([]GroupSummary, error) {
	var resp groupsResponse
	if err := getJSON(ctx, d.http, d.base+"/api/groups/all", &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryUnavailable, resp.Error)
	}
	return resp.Groups, nil
}

type createGroupRequest struct {
	GroupName   string `json:"group_name"`
	Description string `json:"description"`
}

type createGroupResponse struct {
	Success bool   `json:"success"`
	GroupID int64  `json:"group_id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CreateGroup registers a new group and returns its id.
func (d *Directory) CreateGroup(ctx context.Context, name, description string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: group name required", ErrDirectoryUnavailable)
	}
	var resp createGroupResponse
	req := createGroupRequest{GroupName: name, Description: strings.TrimSpace(description)}
	if err := postJSON(ctx, d.http, d.base+"/api/groups/create", req, &resp); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !resp.Success {
		return 0, fmt.Errorf("%w: %s", ErrDirectoryUnavailable, resp.Error)
	}
	return resp.GroupID, nil
}
