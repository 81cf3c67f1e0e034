package gqlcore

import "github.com/vektah/gqlparser/v2/ast"

// astField/astFragmentSpread/astInlineFragment name the three concrete
// ast.Selection implementations the shared selection-set walk switches
// on. Local aliases keep the switch statements in resolver.go and
// subscription.go terse.
type astField = ast.Field
type astFragmentSpread = ast.FragmentSpread
type astInlineFragment = ast.InlineFragment

// pos dereferences a gqlparser *ast.Position, returning the zero
// Position when nil (several AST nodes carry no position when
// synthesized rather than parsed).
func pos(p *ast.Position) ast.Position {
	if p == nil {
		return ast.Position{}
	}
	return *p
}

// fieldPos returns the position of the field currently being resolved,
// used by error builders that only have a *ContextField in hand.
func fieldPos(fc *ContextField) ast.Position {
	return pos(fc.Item.Position)
}
