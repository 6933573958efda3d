package codegen

import (
	"fmt"
	"strings"

	"github.com/axiomates/cil2cpp/internal/ir"
)

// Canonical runtime-collaborator symbol names. These, plus every
// registered ICall's runtime name, are the stable API surface the
// emitted C++ calls into; the core never defines them, only names them.
const (
	RuntimeArrayCreate      = "cil2cpp::array_create"
	RuntimeStringConcat     = "cil2cpp::string_concat"
	RuntimeCheckedAdd       = "cil2cpp::checked_add"
	RuntimeCheckedConv      = "cil2cpp::checked_conv"
	RuntimeObjectAs         = "cil2cpp::object_as"
	RuntimeObjectCast       = "cil2cpp::object_cast"
	RuntimeGCAlloc          = "cil2cpp::gc::alloc"
	RuntimeObjectClone      = "object_memberwise_clone"
	RuntimeArrayData        = "array_data"
	RuntimeArrayLength      = "array_length"
	RuntimeArrayGetSubarray = "array_get_subarray"
)

// RenderLine renders one Instruction to its documented target-language
// text line. This is the reference realization of the instruction-to-
// code-text contract: every variant's mapping is fixed here so that any
// conforming external emitter reproduces the same text for the same
// instruction.
func RenderLine(instr ir.Instruction) string {
	switch v := instr.(type) {
	case *ir.Comment:
		return "// " + v.Text
	case *ir.DeclareLocal:
		return fmt.Sprintf("%s %s;", v.TypeName, v.Name)
	case *ir.Assign:
		return fmt.Sprintf("%s = %s;", v.Result, v.Value)
	case *ir.Load:
		return renderLoad(v)
	case *ir.Store:
		return renderStore(v)
	case *ir.BinaryOp:
		return fmt.Sprintf("%s = %s %s %s;", v.Result, v.Left, v.Op, v.Right)
	case *ir.UnaryOp:
		return fmt.Sprintf("%s = %s%s;", v.Result, v.Op, v.Value)
	case *ir.Branch:
		if v.LeaveSuppressed {
			return "// leave suppressed: falls through to finally epilogue"
		}
		return fmt.Sprintf("goto %s;", v.TargetLabel)
	case *ir.ConditionalBranch:
		if v.FalseLabel == "" {
			return fmt.Sprintf("if (%s) goto %s;", v.Condition, v.TrueLabel)
		}
		return fmt.Sprintf("if (%s) goto %s; else goto %s;", v.Condition, v.TrueLabel, v.FalseLabel)
	case *ir.Switch:
		return renderSwitch(v)
	case *ir.Label:
		return v.Name + ":"
	case *ir.Call:
		return renderCall(v)
	case *ir.NewObj:
		return fmt.Sprintf("%s = %s(%s);", v.Result, v.Ctor, strings.Join(v.Arguments, ", "))
	case *ir.NewArr:
		if v.Rank == 1 {
			return fmt.Sprintf("%s = %s<%s>(%s);", v.Result, RuntimeArrayCreate, v.ElementTypeName, v.LengthTemp)
		}
		return fmt.Sprintf("%s = cil2cpp::icall::mdarray_create<%s>(%d, %s);", v.Result, v.ElementTypeName, v.Rank, v.LengthTemp)
	case *ir.DelegateCreate:
		return fmt.Sprintf("%s = %s::create(%s, %s);", v.Result, v.DelegateTypeName, v.TargetTemp, v.FunctionPointer)
	case *ir.DelegateInvoke:
		return fmt.Sprintf("%s = %s->invoke(%s);", v.Result, v.DelegateTemp, strings.Join(v.Arguments, ", "))
	case *ir.LoadFunctionPointer:
		if v.IsVirtual {
			return fmt.Sprintf("%s = &%s /* virtual */;", v.Result, v.MethodName)
		}
		return fmt.Sprintf("%s = &%s;", v.Result, v.MethodName)
	case *ir.Cast:
		return renderCast(v)
	case *ir.Conversion:
		if v.Checked {
			return fmt.Sprintf("%s = %s<%s>(%s);", v.Result, RuntimeCheckedConv, v.TargetScalar, v.Value)
		}
		return fmt.Sprintf("%s = (%s)%s;", v.Result, v.TargetScalar, v.Value)
	case *ir.Box:
		return fmt.Sprintf("%s = %s::box<%s>(%s);", v.Result, RuntimeGCAlloc, v.ValueTypeName, v.Value)
	case *ir.Unbox:
		return fmt.Sprintf("%s = %s->unbox<%s>();", v.Result, v.Value, v.ValueTypeName)
	case *ir.ExceptionMarker:
		return renderExceptionMarker(v)
	case *ir.EndFilter:
		return fmt.Sprintf("return %s;", v.ResultVar)
	case *ir.Throw:
		return fmt.Sprintf("throw %s;", v.Value)
	case *ir.Rethrow:
		return "throw;"
	case *ir.StaticCtorGuard:
		return fmt.Sprintf("%s::__ensure_cctor();", v.TypeName)
	case *ir.RawTargetCode:
		return v.Text
	case *ir.Return:
		if v.Value == "" {
			return "return;"
		}
		return fmt.Sprintf("return %s;", v.Value)
	default:
		return fmt.Sprintf("/* unmapped instruction %T */", instr)
	}
}

func renderLoad(v *ir.Load) string {
	switch v.Kind {
	case ir.LoadArg, ir.LoadLocal:
		return fmt.Sprintf("%s = %s;", v.Result, v.Name)
	case ir.LoadField:
		return fmt.Sprintf("%s = %s->%s;", v.Result, v.BaseTemp, v.Name)
	case ir.LoadStaticField:
		return fmt.Sprintf("%s = %s;", v.Result, v.Name)
	case ir.LoadArrayElement:
		return fmt.Sprintf("%s = %s(%s)[%s];", v.Result, RuntimeArrayData, v.BaseTemp, v.IndexTemp)
	case ir.LoadArrayLength:
		return fmt.Sprintf("%s = %s(%s);", v.Result, RuntimeArrayLength, v.BaseTemp)
	case ir.LoadIndirect:
		return fmt.Sprintf("%s = *%s;", v.Result, v.BaseTemp)
	case ir.LoadConstInt, ir.LoadConstFloat:
		return fmt.Sprintf("%s = %s;", v.Result, v.Name)
	case ir.LoadConstString:
		return fmt.Sprintf("%s = %s;", v.Result, v.Name)
	case ir.LoadConstNull:
		return fmt.Sprintf("%s = nullptr;", v.Result)
	default:
		return fmt.Sprintf("%s = %s;", v.Result, v.Name)
	}
}

func renderStore(v *ir.Store) string {
	switch v.Kind {
	case ir.StoreArg, ir.StoreLocal:
		return fmt.Sprintf("%s = %s;", v.Name, v.ValueTemp)
	case ir.StoreField:
		return fmt.Sprintf("%s->%s = %s;", v.BaseTemp, v.Name, v.ValueTemp)
	case ir.StoreStaticField:
		return fmt.Sprintf("%s = %s;", v.Name, v.ValueTemp)
	case ir.StoreArrayElement:
		return fmt.Sprintf("%s(%s)[%s] = %s;", RuntimeArrayData, v.BaseTemp, v.IndexTemp, v.ValueTemp)
	case ir.StoreIndirect:
		return fmt.Sprintf("*%s = %s;", v.BaseTemp, v.ValueTemp)
	default:
		return fmt.Sprintf("%s = %s;", v.Name, v.ValueTemp)
	}
}

func renderSwitch(v *ir.Switch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "switch (%s) { ", v.Value)
	for _, c := range v.Cases {
		fmt.Fprintf(&b, "case %d: goto %s; ", c.Value, c.Label)
	}
	fmt.Fprintf(&b, "default: goto %s; }", v.DefaultLabel)
	return b.String()
}

func renderCall(v *ir.Call) string {
	args := strings.Join(v.Arguments, ", ")
	callee := v.CalleeName
	if v.IsVirtual {
		callee = fmt.Sprintf("%s /* vtable slot %d */", v.CalleeName, v.VTableSlot)
	} else if v.IsInterfaceCall {
		callee = v.CalleeName + " /* interface dispatch */"
	}
	if v.Result == "" {
		return fmt.Sprintf("%s(%s);", callee, args)
	}
	return fmt.Sprintf("%s = %s(%s);", v.Result, callee, args)
}

func renderCast(v *ir.Cast) string {
	if v.Kind == ir.CastUnsafe {
		return fmt.Sprintf("%s = %s<%s>(%s);", v.Result, RuntimeObjectCast, v.TargetTypeName, v.Value)
	}
	if v.IsInstCheck {
		return fmt.Sprintf("%s = %s<%s>(%s);", v.Result, RuntimeObjectAs, v.TargetTypeName, v.Value)
	}
	return fmt.Sprintf("%s = %s<%s>(%s);", v.Result, RuntimeObjectCast, v.TargetTypeName, v.Value)
}

func renderExceptionMarker(v *ir.ExceptionMarker) string {
	switch v.Kind {
	case ir.TryBeginMarker:
		return fmt.Sprintf("try { // region %d", v.RegionID)
	case ir.TryEndMarker:
		return fmt.Sprintf("} // end region %d", v.RegionID)
	case ir.CatchBeginMarker:
		if v.ExceptionVar == "" {
			return fmt.Sprintf("} catch (%s&) { // region %d", v.CatchTypeName, v.RegionID)
		}
		return fmt.Sprintf("} catch (%s& %s) { // region %d", v.CatchTypeName, v.ExceptionVar, v.RegionID)
	case ir.FinallyBeginMarker:
		return fmt.Sprintf("/* finally epilogue for region %d */ {", v.RegionID)
	case ir.FilterBeginMarker:
		return fmt.Sprintf("/* filter for region %d */ [&]() -> bool {", v.RegionID)
	case ir.FilterHandlerBeginMarker:
		return fmt.Sprintf("}() ? ({ // filter-accepted handler for region %d", v.RegionID)
	default:
		return fmt.Sprintf("/* exception marker %d for region %d */", v.Kind, v.RegionID)
	}
}
