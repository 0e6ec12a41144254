// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package config

import (
	"fmt"
	"os"
	"slices"

	"go.starlark.net/starlark"
)

var predeclared = starlark.StringDict{
	"toolchain": starlark.NewBuiltin("toolchain", builtinToolchain),
	"backend":   starlark.NewBuiltin("backend", builtinBackend),
	"getenv":    starlark.NewBuiltin("getenv", builtinGetenv),
}

// makeDict builds a dict from name, value pairs, skipping unset values.
func makeDict(pairs ...any) (dict *starlark.Dict, err error) {
	dict = starlark.NewDict(len(pairs) / 2)
	for n := 0; n+1 < len(pairs); n += 2 {
		value, _ := pairs[n+1].(starlark.Value)
		if value == nil {
			continue
		}
		err = dict.SetKey(starlark.String(pairs[n].(string)), value)
		if err != nil {
			return
		}
	}
	return
}

// toolchain(assembler=, linker=, as_flags=, ld_flags=, text_base=, env=)
func builtinToolchain(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var assembler, linker, asFlags, ldFlags, textBase, env starlark.Value
	err = starlark.UnpackArgs(b.Name(), args, kwargs,
		"assembler?", &assembler,
		"linker?", &linker,
		"as_flags?", &asFlags,
		"ld_flags?", &ldFlags,
		"text_base?", &textBase,
		"env?", &env,
	)
	if err != nil {
		return
	}

	dict, err := makeDict(
		"assembler", assembler,
		"linker", linker,
		"as_flags", asFlags,
		"ld_flags", ldFlags,
		"text_base", textBase,
		"env", env,
	)
	if err != nil {
		return
	}

	if _, ok := asToolchain(dict); !ok {
		err = fmt.Errorf("%v: %w", b.Name(), ErrSetting("toolchain"))
		return
	}

	value = dict
	return
}

// backend(name, command, env=)
func builtinBackend(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var name string
	var command, env starlark.Value
	err = starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name,
		"command", &command,
		"env?", &env,
	)
	if err != nil {
		return
	}

	dict, err := makeDict(
		"name", starlark.String(name),
		"command", command,
		"env", env,
	)
	if err != nil {
		return
	}

	if _, ok := asBackend(dict); !ok {
		err = fmt.Errorf("%v: %w", b.Name(), ErrSetting(name))
		return
	}

	value = dict
	return
}

// getenv(name, default="")
func builtinGetenv(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var name, fallback string
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &fallback)
	if err != nil {
		return
	}

	text, ok := os.LookupEnv(name)
	if !ok {
		text = fallback
	}
	value = starlark.String(text)
	return
}

func asInt(value starlark.Value) (n int64, ok bool) {
	i, ok := value.(starlark.Int)
	if !ok {
		return
	}
	n, ok = i.Int64()
	return
}

// asStrings accepts a list or tuple of strings.
func asStrings(value starlark.Value) (list []string, ok bool) {
	var seq starlark.Indexable
	switch v := value.(type) {
	case *starlark.List:
		seq = v
	case starlark.Tuple:
		seq = v
	default:
		return
	}

	list = make([]string, seq.Len())
	for n := range list {
		list[n], ok = starlark.AsString(seq.Index(n))
		if !ok {
			list = nil
			return
		}
	}
	ok = true
	return
}

// asEnv accepts a dict of strings, as sorted KEY=value pairs.
func asEnv(value starlark.Value) (env []string, ok bool) {
	dict, ok := value.(*starlark.Dict)
	if !ok {
		return
	}

	for _, item := range dict.Items() {
		var k, v string
		k, ok = starlark.AsString(item[0])
		if !ok {
			return
		}
		v, ok = starlark.AsString(item[1])
		if !ok {
			return
		}
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	ok = true
	return
}

// lookup returns a dict entry, or nil if not present.
func lookup(dict *starlark.Dict, key string) starlark.Value {
	value, found, err := dict.Get(starlark.String(key))
	if err != nil || !found {
		return nil
	}
	return value
}

func asToolchain(value starlark.Value) (tc Toolchain, ok bool) {
	dict, ok := value.(*starlark.Dict)
	if !ok {
		return
	}

	for _, key := range []string{"assembler", "linker", "as_flags", "ld_flags", "text_base", "env"} {
		v := lookup(dict, key)
		if v == nil {
			continue
		}
		switch key {
		case "assembler":
			tc.As, ok = starlark.AsString(v)
		case "linker":
			tc.Ld, ok = starlark.AsString(v)
		case "as_flags":
			tc.AsFlags, ok = asStrings(v)
		case "ld_flags":
			tc.LdFlags, ok = asStrings(v)
		case "text_base":
			var n int64
			n, ok = asInt(v)
			ok = ok && n >= 0 && n <= 0xffffffff
			tc.TextBase = uint32(n)
		case "env":
			tc.Env, ok = asEnv(v)
		}
		if !ok {
			return
		}
	}

	ok = true
	return
}

func asBackend(value starlark.Value) (be Backend, ok bool) {
	dict, ok := value.(*starlark.Dict)
	if !ok {
		return
	}

	be.Name, ok = starlark.AsString(lookup(dict, "name"))
	if !ok {
		return
	}

	command := lookup(dict, "command")
	if text, isString := starlark.AsString(command); isString {
		be.Command = []string{text}
	} else {
		be.Command, ok = asStrings(command)
		if !ok || len(be.Command) == 0 {
			ok = false
			return
		}
	}

	if env := lookup(dict, "env"); env != nil {
		be.Env, ok = asEnv(env)
		if !ok {
			return
		}
	}

	ok = true
	return
}
