package scenery

import (
	"strconv"

	"github.com/gekko3d/scenery/engine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IdentityMatch pairs one saved child record with the runtime mesh it now
// names.
type IdentityMatch struct {
	NodeID string
	Token  string
	Key    string
	Mesh   *engine.Mesh
}

// IdentityResult is the outcome of reconciling a freshly loaded model with
// its saved child records.
type IdentityResult struct {
	Matched []IdentityMatch
	// Retained is the model's new active mesh set, in load order.
	Retained []*engine.Mesh
	// Disposed meshes had no saved record.
	Disposed []*engine.Mesh
	// Unmatched saved records found no mesh; their tokens stay unresolved.
	Unmatched []Node
}

// identityKeys gives every name its case-folded occurrence key. The n-th
// mesh named "wheel" (in any case) gets "wheel::n".
func identityKeys(names []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]int, len(names))
	keys := make([]string, len(names))
	for i, name := range names {
		folded := lower.String(name)
		keys[i] = folded + "::" + strconv.Itoa(seen[folded])
		seen[folded]++
	}
	return keys
}

// ResolveIdentities reconciles loaded (a model's meshes in load order) with
// the saved child records of parent. Matched meshes get the saved token and
// visibility; meshes without a record are disposed. The synthetic root is
// neither matched nor disposed. With no saved records every real mesh is
// disposed.
func ResolveIdentities(parent *Node, children []Node, loaded []*engine.Mesh) IdentityResult {
	var real []*engine.Mesh
	for _, m := range loaded {
		if m.Synthetic || m.IsDisposed() {
			continue
		}
		real = append(real, m)
	}

	meshNames := make([]string, len(real))
	for i, m := range real {
		meshNames[i] = m.Name
	}
	meshKeys := identityKeys(meshNames)
	byKey := make(map[string]*engine.Mesh, len(real))
	for i, m := range real {
		byKey[meshKeys[i]] = m
	}

	childNames := make([]string, len(children))
	for i, c := range children {
		childNames[i] = c.Name
	}
	childKeys := identityKeys(childNames)

	parentVisible := parent == nil || parent.IsVisible()
	var result IdentityResult
	claimed := make(map[*engine.Mesh]bool, len(children))
	for i := range children {
		child := &children[i]
		m, ok := byKey[childKeys[i]]
		if !ok || claimed[m] {
			result.Unmatched = append(result.Unmatched, *child)
			continue
		}
		claimed[m] = true

		token := ""
		if child.Child != nil {
			token = child.Child.Token
		}
		m.ID = child.ID
		m.StableToken = token
		m.SetMetadata("stableToken", token)
		if child.IsVisible() && parentVisible {
			m.Visibility = 1
		} else {
			m.Visibility = 0
		}
		result.Matched = append(result.Matched, IdentityMatch{
			NodeID: child.ID,
			Token:  token,
			Key:    childKeys[i],
			Mesh:   m,
		})
	}

	for _, m := range real {
		if claimed[m] {
			result.Retained = append(result.Retained, m)
			continue
		}
		m.Dispose()
		result.Disposed = append(result.Disposed, m)
	}
	return result
}
