package foamdict

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// directive parses the line after a '#'. The directive is always kept in
// the dictionary and, with macro expansion on, also executed.
func (r *reducer) directive(scope *Dict, deco string) error {
	tok, err := r.next()
	if err != nil {
		return err
	}

	var text string
	switch tok.Kind {
	case TokenInclude, TokenIncludeIfPresent:
		target, err := r.expect(TokenString)
		if err != nil {
			return err
		}
		r.keepDirective(scope, "#"+tok.Literal+" "+target.Literal, deco)
		if !r.opts.MacroExpansion {
			return nil
		}
		return r.include(scope, tok, target.Literal[1:len(target.Literal)-1])

	case TokenInputMode:
		arg, err := r.next()
		if err != nil {
			return err
		}
		mode, ok := ParseInputMode(arg.Literal)
		if !ok || !arg.Kind.IsWordLike() {
			return r.syntaxError(arg, "input mode")
		}
		text = "#inputMode " + arg.Literal
		if r.opts.MacroExpansion {
			r.mode = mode
			r.logger.Debug("input mode changed", zap.String("file", r.file), zap.Stringer("mode", mode))
		}

	case TokenRemove:
		text, err = r.removeArgs()
		if err != nil {
			return err
		}

	default:
		return r.syntaxError(tok, "directive")
	}

	r.keepDirective(scope, text, deco)
	return nil
}

// keepDirective records a directive line. An executed directive is kept as
// a comment so a rewrite does not execute it a second time.
func (r *reducer) keepDirective(scope *Dict, text, deco string) {
	if r.opts.MacroExpansion {
		text = "// " + text
	}
	scope.AddDirective(text, deco)
}

// removeArgs parses the target of #remove: one word or a list of words.
// The entries are never removed; the directive is only carried along.
func (r *reducer) removeArgs() (string, error) {
	tok, err := r.next()
	if err != nil {
		return "", err
	}
	if tok.Kind.IsWordLike() {
		return "#remove " + tok.Literal, nil
	}
	if tok.Kind != TokenLParen {
		return "", r.syntaxError(tok, "word or list of words")
	}
	var words []string
	for {
		tok, err := r.next()
		if err != nil {
			return "", err
		}
		if tok.Kind == TokenRParen {
			break
		}
		if !tok.Kind.IsWordLike() && tok.Kind != TokenString {
			return "", r.syntaxError(tok, "word")
		}
		words = append(words, tok.Literal)
	}
	return "#remove (" + strings.Join(words, " ") + ")", nil
}

// include parses another file as a headerless body and merges its keys
// into scope. Relative names resolve against the including file.
func (r *reducer) include(scope *Dict, kw Token, name string) error {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, name)
	}
	if !exists(path) {
		if kw.Kind == TokenIncludeIfPresent {
			r.logger.Debug("optional include not found", zap.String("path", path))
			return nil
		}
		return newSemanticError(fmt.Sprintf("included file %s does not exist", path), ErrIncludeMissing, kw)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return &IoError{Op: "resolve", Path: path, Err: err}
	}
	if r.including[abs] {
		return newSemanticError(fmt.Sprintf("circular include of %s", path), ErrIncludeCycle, kw)
	}
	r.including[abs] = true
	defer delete(r.including, abs)

	src, err := readFile(path)
	if err != nil {
		return err
	}

	opts := r.opts
	opts.Shape = ShapeHeaderless
	opts.BinaryMode = false
	sub := NewParserWithOptions(opts).WithLogger(r.logger)
	r.logger.Debug("including file", zap.String("path", path), zap.String("from", r.file))
	doc, err := sub.parse(src, path, r.including)
	if err != nil {
		return err
	}
	r.warnings = append(r.warnings, doc.Warnings...)

	for _, e := range doc.Body.Dict.Entries() {
		if e.IsDirective() || e.Key == "FoamFile" {
			continue
		}
		if err := r.merge(scope, e.Key, e.Value, e.Decoration, kw); err != nil {
			return err
		}
	}
	return nil
}

// substitute resolves $name against the open scopes, innermost first. A
// miss is not fatal: the result is a placeholder string and a warning.
func (r *reducer) substitute(tok Token) Value {
	if !r.opts.MacroExpansion {
		return Word(tok.Literal)
	}
	name := tok.Literal[1:]
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if v, ok := r.scopes[i].Get(name); ok {
			red := &Redirection{Name: name, Snapshot: v.Clone(), origin: r.scopes[i]}
			r.redirects = append(r.redirects, red)
			return Value{Kind: KindRedirection, Redirect: red}
		}
	}
	msg := fmt.Sprintf("symbol '%s' not found", name)
	r.warn(tok, name, msg)
	return String(msg)
}

// splice handles "$name;" on a line of its own: the keys of the referenced
// dictionary are copied into scope and the splice is recorded on it.
func (r *reducer) splice(scope *Dict, tok Token, deco string) error {
	if _, err := r.expect(TokenSemicolon); err != nil {
		return err
	}
	if !r.opts.MacroExpansion {
		return r.define(scope, tok.Literal, Empty(), deco, tok)
	}

	v := r.substitute(tok)
	if v.Kind != KindRedirection {
		return r.define(scope, tok.Literal, Empty(), deco, tok)
	}
	if v.Redirect.Snapshot.Kind != KindDict {
		r.warn(tok, v.Redirect.Name, fmt.Sprintf("cannot splice $%s: not a dictionary", v.Redirect.Name))
		return r.define(scope, tok.Literal, Empty(), deco, tok)
	}

	scope.AddRedirection(v.Redirect)
	for i, e := range v.Redirect.Snapshot.Dict.Entries() {
		if e.IsDirective() {
			continue
		}
		if i == 0 && e.Decoration == "" {
			e.Decoration = deco
		}
		if err := r.merge(scope, e.Key, e.Value.Clone(), e.Decoration, tok); err != nil {
			return err
		}
	}
	return nil
}

// define stores an entry written in the current file. Duplicate detection
// applies here only; values arriving through includes and splices go
// straight to merge.
func (r *reducer) define(scope *Dict, key string, v Value, deco string, tok Token) error {
	if r.opts.DuplicateCheck && scope.Has(key) {
		msg := fmt.Sprintf("key %s already defined", key)
		if r.opts.DuplicateFail {
			return newSemanticError(msg, ErrDuplicateKey, tok)
		}
		r.warn(tok, key, msg)
	}
	return r.merge(scope, key, v, deco, tok)
}

// merge stores v under key, applying the active input mode when the key
// already exists. Without macro expansion the last definition wins.
func (r *reducer) merge(scope *Dict, key string, v Value, deco string, tok Token) error {
	old, exists := scope.Get(key)
	if exists && r.opts.MacroExpansion {
		switch r.mode {
		case ModeError:
			return newSemanticError(fmt.Sprintf("key %s already defined", key), ErrInputModeError, tok)
		case ModeWarn:
			r.warn(tok, key, fmt.Sprintf("key %s already defined, keeping the first definition", key))
			return nil
		case ModeProtect:
			return nil
		case ModeMerge:
			if old.Kind == KindDict && v.Kind == KindDict {
				v = DictValue(mergeDicts(old.Dict, v.Dict))
			}
		}
	}
	scope.Set(key, v)
	if !exists || deco != "" {
		scope.SetDecoration(key, deco)
	}
	return nil
}

// mergeDicts returns base with overlay merged in. Sub-dictionaries present
// in both are merged recursively, everything else is replaced.
func mergeDicts(base, overlay *Dict) *Dict {
	out := base.Clone()
	for _, e := range overlay.Entries() {
		if e.IsDirective() {
			out.AddDirective(e.Value.Str, e.Decoration)
			continue
		}
		if existing, ok := out.Get(e.Key); ok && existing.Kind == KindDict && e.Value.Kind == KindDict {
			out.Set(e.Key, DictValue(mergeDicts(existing.Dict, e.Value.Dict)))
		} else {
			out.Set(e.Key, e.Value)
		}
		if e.Decoration != "" {
			out.SetDecoration(e.Key, e.Decoration)
		}
	}
	return out
}
