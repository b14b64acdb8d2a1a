package std

import (
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/text"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// Debug holds debugging helpers.
type Debug struct {
	NS *namespace.Namespace
	// ObjDump prints the data and tags of every object.
	ObjDump *namespace.Subroutine
}

func (l *Library) installDebug() (*Debug, error) {
	ns := l.Root.CreateNamespace("debug")
	d := &Debug{NS: ns}
	fn := ns.CreateFunction("objdump", namespace.WithDescription("Print the data and tags of every object."))
	d.ObjDump = fn

	id := fn.ScoreVar("obj_id")
	if err := l.Print(fn,
		text.Style{"underlined": true}, "All objects:",
		text.Style{"underlined": false, "color": "gray"}, " (ID: data, tags)"); err != nil {
		return nil, err
	}
	if err := fn.Move(value.Int(1), id); err != nil {
		return nil, err
	}
	loop, err := fn.While(value.ScoreCompare(id, "<=", l.Object.Counter))
	if err != nil {
		return nil, err
	}
	if err := l.Call(loop, l.Object.Fetch, id); err != nil {
		return nil, err
	}
	if err := l.Print(loop,
		text.Style{"color": "light_purple"}, id, ": ",
		text.Style{"color": text.Unset}, value.OnEntity(l.Object.RetSel, "data", types.Compound),
		text.Style{"color": "gray"}, " (", value.OnEntity(l.Object.RetSel, "Tags", types.List), ")"); err != nil {
		return nil, err
	}
	if err := loop.AddInPlace(id, value.Int(1)); err != nil {
		return nil, err
	}
	loop.End()
	fn.End()
	return d, nil
}
