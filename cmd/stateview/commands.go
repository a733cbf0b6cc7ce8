package main

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"

	"stateview/pkg/address"
	"stateview/pkg/record"
	"stateview/pkg/settings"
	"stateview/pkg/state"
)

func runCommit(st *state.Store, args []string) error {
	fs := flag.NewFlagSet("commit", flag.ExitOnError)
	parent := fs.String("root", "", "parent root (empty commits onto empty state)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: commit [-root PARENT] KEY=VALUE ...")
	}

	values := make(map[string]string, fs.NArg())
	for _, arg := range fs.Args() {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("argument %q is not KEY=VALUE", arg)
		}
		values[key] = value
	}

	var r settings.Reader
	if *parent != "" {
		sr, err := st.ReaderAt(state.Root(*parent))
		if err != nil {
			return err
		}
		r = sr
	}
	updates, err := settings.BuildUpdates(r, values)
	if err != nil {
		return err
	}
	root, err := st.Commit(state.Root(*parent), updates)
	if err != nil {
		return err
	}
	fmt.Println(root)
	return nil
}

func runGet(factory *settings.Factory, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	root := fs.String("root", "", "state root to read (required)")
	typ := fs.String("type", "string", "value type: string|int|int64|uint64|float|bool|duration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *root == "" || fs.NArg() != 1 {
		return errors.New("usage: get -root ROOT [-type T] KEY")
	}
	key := fs.Arg(0)

	v, err := factory.CreateView(state.Root(*root))
	if err != nil {
		return err
	}
	raw, ok, err := v.GetSetting(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("setting %q is not set at this root", key)
	}
	out, err := formatValue(*typ, raw)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	fmt.Println(out)
	return nil
}

func runList(factory *settings.Factory, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	root := fs.String("root", "", "state root to read (required)")
	typ := fs.String("type", "string", "element type: string|int|int64|uint64|float|bool|duration")
	delim := fs.String("delimiter", settings.DefaultDelimiter, "list delimiter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *root == "" || fs.NArg() != 1 {
		return errors.New("usage: list -root ROOT [-type T] [-delimiter D] KEY")
	}
	key := fs.Arg(0)

	v, err := factory.CreateView(state.Root(*root))
	if err != nil {
		return err
	}
	elems, err := settings.GetListDelim(v, key, nil, settings.String, *delim)
	if err != nil {
		return err
	}
	if elems == nil {
		return fmt.Errorf("setting %q is not set at this root", key)
	}
	for i, e := range elems {
		out, err := formatValue(*typ, e)
		if err != nil {
			return fmt.Errorf("setting %q element %d: %w", key, i, err)
		}
		fmt.Println(out)
	}
	return nil
}

func runDump(st *state.Store, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	root := fs.String("root", "", "state root to read (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *root == "" || fs.NArg() != 0 {
		return errors.New("usage: dump -root ROOT")
	}

	r, err := st.ReaderAt(state.Root(*root))
	if err != nil {
		return err
	}
	stored, err := r.GetRange(address.NamespacePrefix)
	if err != nil {
		return err
	}

	var entries []record.Entry
	for _, s := range stored {
		bucket, err := record.Decode(s.Data)
		if err != nil {
			return fmt.Errorf("record at %s: %w", s.Address, err)
		}
		entries = append(entries, bucket...)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	for _, e := range entries {
		fmt.Printf("%s = %s\n", e.Key, e.Value)
	}
	return nil
}

func runRoots(st *state.Store, args []string) error {
	fs := flag.NewFlagSet("roots", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	infos, err := st.Roots()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no commits")
		return nil
	}
	for _, ci := range infos {
		parent := string(ci.Parent)
		if parent == "" {
			parent = "(genesis)"
		}
		fmt.Printf("%s  %s  parent=%s  id=%s\n",
			ci.Time.Format("2006-01-02 15:04:05"), ci.Root, parent, ci.ID)
	}
	return nil
}

// formatValue validates raw against the named type and returns its printed
// form. The converters are the same ones library callers pass to Get.
func formatValue(typ, raw string) (string, error) {
	switch typ {
	case "", "string":
		return settings.String(raw)
	case "int":
		v, err := settings.Int(raw)
		return fmt.Sprint(v), err
	case "int64":
		v, err := settings.Int64(raw)
		return fmt.Sprint(v), err
	case "uint64":
		v, err := settings.Uint64(raw)
		return fmt.Sprint(v), err
	case "float":
		v, err := settings.Float64(raw)
		return fmt.Sprint(v), err
	case "bool":
		v, err := settings.Bool(raw)
		return fmt.Sprint(v), err
	case "duration":
		v, err := settings.Duration(raw)
		return v.String(), err
	default:
		return "", fmt.Errorf("unknown type %q", typ)
	}
}
