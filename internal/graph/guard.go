package graph

import (
	"math"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"itemvault/internal/domain"
)

// Guard limits on a query document.
const (
	DefaultMaxDepth = 5
	DefaultMaxCost  = 10000
)

// GuardConfig configures the static query guard.
type GuardConfig struct {
	// MaxDepth is the deepest allowed nesting of selection sets.
	MaxDepth int
	// MaxCost is the largest allowed estimated field count.
	MaxCost int
	// ListFields names the fields that resolve to lists, mapped to the page
	// size assumed when the query gives no limit argument. Children of a
	// list field are multiplied by its assumed size.
	ListFields map[string]int
}

// Guard rejects query documents whose static shape exceeds the configured
// depth or cost ceiling. It runs entirely on the parsed AST, before any
// resolver or store access, so a rejected query has no side effects.
type Guard struct {
	cfg GuardConfig
}

// NewGuard creates a Guard, filling zero limits with the defaults.
func NewGuard(cfg GuardConfig) *Guard {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = DefaultMaxCost
	}
	return &Guard{cfg: cfg}
}

// Check parses the query and verifies both ceilings. The returned error is a
// ValidationError for unparseable documents and a QueryTooExpensiveError for
// guard rejections.
func (g *Guard) Check(query string) error {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(query), Name: "GraphQL request"}),
	})
	if err != nil {
		return domain.ErrValidation("malformed query document: %v", err)
	}

	fragments := map[string]*ast.FragmentDefinition{}
	for _, def := range doc.Definitions {
		if frag, ok := def.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}

		w := &shapeWalker{fragments: fragments, active: map[string]bool{}}
		depth := w.depth(op.SelectionSet)
		if depth > g.cfg.MaxDepth {
			return domain.ErrQueryTooExpensive("query depth %d exceeds the limit of %d", depth, g.cfg.MaxDepth)
		}

		cost := w.cost(op.SelectionSet, 1, g.cfg.ListFields)
		if cost > g.cfg.MaxCost {
			return domain.ErrQueryTooExpensive("estimated query cost %d exceeds the limit of %d", cost, g.cfg.MaxCost)
		}
	}
	return nil
}

// shapeWalker traverses selection sets, expanding fragment spreads at most
// once per spread chain to stay safe on cyclic fragments.
type shapeWalker struct {
	fragments map[string]*ast.FragmentDefinition
	active    map[string]bool
}

func (w *shapeWalker) depth(set *ast.SelectionSet) int {
	if set == nil {
		return 0
	}
	max := 0
	for _, sel := range set.Selections {
		var d int
		switch s := sel.(type) {
		case *ast.Field:
			d = 1 + w.depth(s.SelectionSet)
		case *ast.InlineFragment:
			d = w.depth(s.SelectionSet)
		case *ast.FragmentSpread:
			name := s.Name.Value
			if w.active[name] {
				continue
			}
			if frag, ok := w.fragments[name]; ok {
				w.active[name] = true
				d = w.depth(frag.SelectionSet)
				delete(w.active, name)
			}
		}
		if d > max {
			max = d
		}
	}
	return max
}

func (w *shapeWalker) cost(set *ast.SelectionSet, multiplier int, listFields map[string]int) int {
	if set == nil {
		return 0
	}
	total := 0
	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			total = satAdd(total, multiplier)
			if s.SelectionSet != nil {
				childMult := multiplier
				if size, ok := listFields[s.Name.Value]; ok {
					childMult = satMul(multiplier, listSize(s, size))
				}
				total = satAdd(total, w.cost(s.SelectionSet, childMult, listFields))
			}
		case *ast.InlineFragment:
			total = satAdd(total, w.cost(s.SelectionSet, multiplier, listFields))
		case *ast.FragmentSpread:
			name := s.Name.Value
			if w.active[name] {
				continue
			}
			if frag, ok := w.fragments[name]; ok {
				w.active[name] = true
				total = satAdd(total, w.cost(frag.SelectionSet, multiplier, listFields))
				delete(w.active, name)
			}
		}
	}
	return total
}

// listSize reads a literal limit argument off a list field, falling back to
// the configured assumed size. Variable limits are unknowable statically and
// also fall back. The result is clamped to MaxMaxResults, the same ceiling
// the stores enforce at execution time, so an inflated literal cannot skew
// the estimate or wrap the multiplier.
func listSize(field *ast.Field, assumed int) int {
	size := assumed
	for _, arg := range field.Arguments {
		if arg.Name.Value != "limit" {
			continue
		}
		if iv, ok := arg.Value.(*ast.IntValue); ok {
			n, err := strconv.Atoi(iv.Value)
			switch {
			case err == nil && n >= 0:
				size = n
			case err != nil:
				// A literal too large for int is certainly over every clamp.
				size = domain.MaxMaxResults
			}
		}
	}
	if size > domain.MaxMaxResults {
		size = domain.MaxMaxResults
	}
	return size
}

// satAdd and satMul are saturating arithmetic: estimates pin at MaxInt
// instead of wrapping negative, so an overflowed cost always rejects.
func satAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func satMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
