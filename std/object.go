package std

import (
	"github.com/deepnoodle-ai/datapack/command"
	"github.com/deepnoodle-ai/datapack/namespace"
	"github.com/deepnoodle-ai/datapack/symbol"
	"github.com/deepnoodle-ai/datapack/types"
	"github.com/deepnoodle-ai/datapack/value"
)

// Objects is the object library. An object is a marker entity carrying the
// object tag and its id in the id objective. Its attributes live in the
// marker's data.
type Objects struct {
	NS *namespace.Namespace

	// IDObjective holds object ids, RefCount their reference counts.
	IDObjective *symbol.Symbol
	RefCount    *symbol.Symbol
	// Counter is the last id handed out.
	Counter *value.ScoreboardVar

	// Tag marks every object. RetTag marks the object fetched last and
	// RetSel selects it.
	Tag    *symbol.Symbol
	RetTag *symbol.Symbol
	RetSel *symbol.Symbol

	// Class is the root class every object class inherits from.
	Class *namespace.Class

	Load    *namespace.Subroutine
	New     *namespace.Subroutine
	Init    *namespace.Subroutine
	Fetch   *namespace.Subroutine
	IncRef  *namespace.Subroutine
	DecRef  *namespace.Subroutine
	Collect *namespace.Subroutine

	tempTag *symbol.Symbol
}

func tagRemoveAll(tag symbol.Name) []command.Command {
	return []command.Command{
		command.Comment("remove the tag from all entities"),
		command.New("tag @e remove %s", tag),
	}
}

func (l *Library) installObjects(cfg config) (*Objects, error) {
	syms := l.Root.Env().Symbols
	ns := l.Root.CreateNamespace("object")
	o := &Objects{
		NS:          ns,
		IDObjective: syms.Objective("id", ns),
		Counter:     ns.ScoreVar("obj_id_counter"),
		RetTag:      syms.Tag("object_ret", ns),
	}
	o.RetSel = syms.Composite("@e[tag=%s]", o.RetTag)

	o.Load = ns.CreateFunction("load",
		namespace.WithTags(LoadTag),
		namespace.WithDescription("Create the object objectives."))
	gc := ns.CreateNamespace("garbage_collection")
	o.RefCount = syms.Objective("reference_count", gc)
	if err := o.Load.Add(
		command.Comment("create the object id and reference count objectives"),
		command.New("scoreboard objectives add %s dummy", o.IDObjective),
		command.New("scoreboard objectives add %s dummy", o.RefCount),
	); err != nil {
		return nil, err
	}
	if cfg.greeting {
		if err := l.log(o.Load, " * Loaded object library!"); err != nil {
			return nil, err
		}
	}
	o.Load.End()

	o.Class = ns.CreateClass("object")
	o.Tag = syms.Tag("object", o.Class)
	o.tempTag = syms.Tag("temp", o.Class)

	o.New = o.Class.CreateFunction("__new__",
		namespace.WithDescription("Create a new object and return its object id."))
	inc, err := l.Root.Env().Convert.AddConst(o.Counter, value.Int(1))
	if err != nil {
		return nil, err
	}
	cmds := tagRemoveAll(o.tempTag)
	cmds = append(cmds, tagRemoveAll(o.RetTag)...)
	cmds = append(cmds, command.Comment("increment the object id counter"))
	cmds = append(cmds, inc...)
	cmds = append(cmds,
		command.Comment("summon a marker with the temp tag"),
		command.New(`summon minecraft:marker 0 0 0 {Tags:["%s","%s","%s"]}`, o.Tag, o.tempTag, o.RetTag),
		command.Comment("set the object id and reference count of the marker"),
		command.New("scoreboard players operation @e[tag=%s] %s = %s %s",
			o.tempTag, o.IDObjective, o.Counter.Player, o.Counter.Objective),
		command.New("scoreboard players set @e[tag=%s] %s 1", o.tempTag, o.RefCount),
	)
	if err := o.New.Add(cmds...); err != nil {
		return nil, err
	}
	if err := o.New.Return(o.Counter); err != nil {
		return nil, err
	}
	o.New.End()

	o.Init = o.Class.CreateFunction("__init__",
		namespace.WithDescription("Initialize an object. Classes override this function."))
	o.Init.End()

	o.Fetch = ns.CreateFunction("fetch_object",
		namespace.WithDescription("Give the object whose id is in the argument register the return tag."))
	cmds = tagRemoveAll(o.RetTag)
	cmds = append(cmds,
		command.Comment("give the selected entity the tag"),
		command.New("execute as @e[tag=%s] if score @s %s = %s %s run tag @s add %s",
			o.Tag, o.IDObjective, l.Arg.Player, l.Arg.Objective, o.RetTag))
	if err := o.Fetch.Add(cmds...); err != nil {
		return nil, err
	}
	o.Fetch.End()

	o.IncRef = gc.CreateFunction("increment_reference_count",
		namespace.WithDescription("Increment the reference count of an object."))
	if err := l.Call(o.IncRef, o.Fetch, nil); err != nil {
		return nil, err
	}
	if err := o.IncRef.Add(command.New("scoreboard players add @e[tag=%s] %s 1", o.RetTag, o.RefCount)); err != nil {
		return nil, err
	}
	o.IncRef.End()

	o.DecRef = gc.CreateFunction("decrement_reference_count",
		namespace.WithDescription("Decrement the reference count of an object."))
	if err := l.Call(o.DecRef, o.Fetch, nil); err != nil {
		return nil, err
	}
	if err := o.DecRef.Add(command.New("scoreboard players remove @e[tag=%s] %s 1", o.RetTag, o.RefCount)); err != nil {
		return nil, err
	}
	o.DecRef.End()

	o.Collect = gc.CreateFunction("garbage_collect",
		namespace.WithDescription("Kill every object without references."))
	if err := o.Collect.Add(
		command.New("execute as @e[tag=%s] unless score @s %s matches 1.. run kill @s", o.Tag, o.RefCount),
	); err != nil {
		return nil, err
	}
	o.Collect.End()
	return o, nil
}

// NewObject appends the commands that create an instance of class, store
// its id in target and run the class's __init__ with the id as argument.
func (l *Library) NewObject(caller *namespace.Subroutine, class *namespace.Class, target value.Variable) error {
	newFn, err := method(class, "__new__")
	if err != nil {
		return err
	}
	initFn, err := method(class, "__init__")
	if err != nil {
		return err
	}
	if err := l.Call(caller, newFn, nil); err != nil {
		return err
	}
	if err := caller.Move(l.Ret, target); err != nil {
		return err
	}
	return l.Call(caller, initFn, target)
}

// Attribute returns the attribute of the object whose id is obj.
func (l *Library) Attribute(obj value.Value, attribute string, typ types.DataType) *value.Derived {
	return value.NewDerived(typ, &attributeVar{lib: l, obj: obj, attribute: attribute, typ: typ})
}

// attributeVar stages an object attribute by fetching the object and
// addressing its marker's data.
type attributeVar struct {
	lib       *Library
	obj       value.Value
	attribute string
	typ       types.DataType
}

func (a *attributeVar) slot() *value.StructuredVar {
	return value.OnEntity(a.lib.Object.RetSel, "data."+a.attribute, a.typ)
}

func (a *attributeVar) fetch() ([]command.Command, error) {
	return a.lib.CallCommands(a.lib.Object.Fetch, a.obj)
}

func (a *attributeVar) ToPrimitive(dst value.Variable) ([]command.Command, error) {
	out, err := a.fetch()
	if err != nil {
		return nil, err
	}
	move, err := a.lib.Root.Env().Convert.Move(a.slot(), dst)
	if err != nil {
		return nil, err
	}
	return append(out, move...), nil
}

func (a *attributeVar) FromPrimitive(src value.Value) ([]command.Command, error) {
	out, err := a.fetch()
	if err != nil {
		return nil, err
	}
	move, err := a.lib.Root.Env().Convert.Move(src, a.slot())
	if err != nil {
		return nil, err
	}
	return append(out, move...), nil
}

func (a *attributeVar) String() string {
	return "ObjectAttribute(" + a.obj.String() + ", " + a.attribute + ")"
}
