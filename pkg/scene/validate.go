package scene

import "fmt"

// ValidationSeverity indicates whether a finding is a hard structural
// violation or merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant broken
	SeverityWarning                           // advisory
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs every structural invariant check against the store: the
// node graph is a forest, parent/child links are symmetric, ids are
// consistent, the legality table holds, and zone references resolve. An
// empty result means the document is structurally sound. Read-only.
func Validate(s *Store) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateForest(s)...)
	errs = append(errs, validateRoots(s)...)
	errs = append(errs, validateLinks(s)...)
	errs = append(errs, validateLegality(s)...)
	errs = append(errs, validateZones(s)...)
	return errs
}

// validateForest checks for cycles using DFS with 3-color marking. White
// (0) = unvisited, gray (1) = on the current DFS path, black (2) = done.
// Meeting a gray node again means a cycle.
func validateForest(s *Store) []ValidationError {
	const (
		white = iota
		gray
		black
	)
	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		if n := s.nodes[id]; n != nil {
			for _, c := range n.Children {
				if visit(c) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id := range s.nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}
	return errs
}

// validateRoots checks that every root id is a live level node whose parent
// is the document root.
func validateRoots(s *Store) []ValidationError {
	var errs []ValidationError
	for _, rid := range s.roots {
		n := s.nodes[rid]
		if n == nil {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if n.Kind != KindLevel {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root node is %s, not level", n.Kind),
				Severity: SeverityError,
			})
		}
		if n.ParentID != RootID {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  "root node carries a parent reference",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateLinks checks index consistency and parent/child symmetry: every
// arena key matches its node id, every child reference resolves to a node
// whose ParentID points back, and every non-root node is contained by its
// parent exactly once.
func validateLinks(s *Store) []ValidationError {
	var errs []ValidationError

	for key, n := range s.nodes {
		if key != n.ID {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("arena key %s does not match node id", key.Short()),
				Severity: SeverityError,
			})
		}
		for _, c := range n.Children {
			child := s.nodes[c]
			if child == nil {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", c.Short()),
					Severity: SeverityError,
				})
				continue
			}
			if child.ParentID != n.ID {
				errs = append(errs, ValidationError{
					NodeID:   c,
					Message:  fmt.Sprintf("parent back-reference points to %s, owned by %s", child.ParentID.Short(), n.ID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	for _, n := range s.nodes {
		siblings := s.roots
		if n.ParentID != RootID {
			p := s.nodes[n.ParentID]
			if p == nil {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("parent %s does not exist", n.ParentID.Short()),
					Severity: SeverityError,
				})
				continue
			}
			siblings = p.Children
		}
		count := 0
		for _, sid := range siblings {
			if sid == n.ID {
				count++
			}
		}
		if count != 1 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("contained %d times by parent, want exactly once", count),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateLegality checks every live parent/child pair against the
// registry's closed table.
func validateLegality(s *Store) []ValidationError {
	var errs []ValidationError
	for _, n := range s.nodes {
		parent := KindRoot
		if n.ParentID != RootID {
			p := s.nodes[n.ParentID]
			if p == nil {
				continue // reported by validateLinks
			}
			parent = p.Kind
		}
		if !s.reg.CanBeChildOf(n.Kind, parent) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s is not a legal child of %s", n.Kind, parent),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateZones checks that zones own no children (membership is by weak
// reference only) and that member references resolve. A dangling member is
// advisory: deletes shrink member lists, so one here means a prune was
// missed, not corruption.
func validateZones(s *Store) []ValidationError {
	var errs []ValidationError
	for _, n := range s.nodes {
		zd, ok := n.Data.(ZoneData)
		if !ok {
			continue
		}
		if len(n.Children) > 0 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("zone owns %d children; zones only reference nodes", len(n.Children)),
				Severity: SeverityError,
			})
		}
		for _, m := range zd.Members {
			if s.nodes[m] == nil {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("zone member %s does not exist", m.Short()),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
