package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// ClientAgentHeader carries an RFC 8941 dictionary describing the caller:
//
//	Client-Agent: app="storefront-cli", version="1.0.0", role="employee"
const ClientAgentHeader = "Client-Agent"

// Agent describes this client in the Client-Agent header. Role is read on
// every request so role switches show up immediately.
type Agent struct {
	App     string
	Version string
	// Role returns the active portal role; nil omits the member.
	Role func() string
}

// Header serializes the agent dictionary.
func (a *Agent) Header() (string, error) {
	dict := httpsfv.NewDictionary()
	if a.App != "" {
		dict.Add("app", httpsfv.NewItem(a.App))
	}
	if a.Version != "" {
		dict.Add("version", httpsfv.NewItem(a.Version))
	}
	if a.Role != nil {
		if role := a.Role(); role != "" {
			dict.Add("role", httpsfv.NewItem(role))
		}
	}
	if len(dict.Names()) == 0 {
		return "", errors.New("empty client agent")
	}
	return httpsfv.Marshal(dict)
}

// ClientAgent is the parsed form of the Client-Agent header.
type ClientAgent struct {
	App     string
	Version string
	Role    string
}

// ParseClientAgent reads a Client-Agent header. Unknown members are ignored;
// app is required.
func ParseClientAgent(header string) (ClientAgent, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return ClientAgent{}, errors.New("empty Client-Agent header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return ClientAgent{}, fmt.Errorf("invalid Client-Agent header: %w", err)
	}

	var ca ClientAgent
	for name, dst := range map[string]*string{"app": &ca.App, "version": &ca.Version, "role": &ca.Role} {
		member, ok := dict.Get(name)
		if !ok {
			continue
		}
		item, ok := member.(httpsfv.Item)
		if !ok {
			return ClientAgent{}, fmt.Errorf("%s must be an item", name)
		}
		s, ok := item.Value.(string)
		if !ok {
			return ClientAgent{}, fmt.Errorf("%s must be a string", name)
		}
		*dst = s
	}
	if ca.App == "" {
		return ClientAgent{}, errors.New("app key not found in Client-Agent header")
	}
	return ca, nil
}
