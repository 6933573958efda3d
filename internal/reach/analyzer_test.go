package reach

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeGraph is a hand-built EdgeSource for exercising the worklist
// without any real metadata behind it.
type fakeGraph struct {
	methodCalls map[string][]string
	methodTypes map[string][]string
	typeFields  map[string][]string
	typeBase    map[string]string
	typeIfaces  map[string][]string
	overrides   map[string][]string // "DeclaringType.Slot" -> overriding methods
	generics    map[string][]GenericInstantiation
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		methodCalls: map[string][]string{},
		methodTypes: map[string][]string{},
		typeFields:  map[string][]string{},
		typeBase:    map[string]string{},
		typeIfaces:  map[string][]string{},
		overrides:   map[string][]string{},
		generics:    map[string][]GenericInstantiation{},
	}
}

func (g *fakeGraph) MethodEdges(methodName string) ([]string, []string) {
	return g.methodCalls[methodName], g.methodTypes[methodName]
}

func (g *fakeGraph) TypeEdges(typeName string) ([]string, string, []string) {
	return g.typeFields[typeName], g.typeBase[typeName], g.typeIfaces[typeName]
}

func (g *fakeGraph) VirtualOverrides(declaringType, slotName string) []string {
	return g.overrides[declaringType+"."+slotName]
}

func (g *fakeGraph) GenericSeeds(methodName string) []GenericInstantiation {
	return g.generics[methodName]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestAnalyzeReachesDirectCallChain(t *testing.T) {
	g := newFakeGraph()
	g.methodCalls["Program.Main()"] = []string{"Helper.Run()"}
	g.methodCalls["Helper.Run()"] = []string{"Helper.Inner()"}

	res := Analyze(g, []Member{{Kind: KindMethod, Name: "Program.Main()"}})

	assert.Equal(t, []string{"Helper.Inner()", "Helper.Run()", "Program.Main()"}, sortedKeys(res.ReachableMethods))
}

func TestAnalyzeDoesNotReachUnrelatedMethod(t *testing.T) {
	g := newFakeGraph()
	g.methodCalls["Program.Main()"] = []string{"Helper.Run()"}

	res := Analyze(g, []Member{{Kind: KindMethod, Name: "Program.Main()"}})

	assert.False(t, res.ReachableMethods["Dead.Code()"])
}

func TestAnalyzeFollowsTypeEdgesFromMethod(t *testing.T) {
	g := newFakeGraph()
	g.methodTypes["Program.Main()"] = []string{"Widget"}
	g.typeBase["Widget"] = "Gadget"
	g.typeIfaces["Widget"] = []string{"IWidget"}
	g.typeFields["Widget"] = []string{"Logger"}

	res := Analyze(g, []Member{{Kind: KindMethod, Name: "Program.Main()"}})

	assert.ElementsMatch(t, []string{"Widget", "Gadget", "IWidget", "Logger"}, sortedKeys(res.ReachableTypes))
}

func TestAnalyzeHandlesCycleWithoutInfiniteLoop(t *testing.T) {
	g := newFakeGraph()
	g.methodCalls["A.Go()"] = []string{"B.Go()"}
	g.methodCalls["B.Go()"] = []string{"A.Go()"}

	res := Analyze(g, []Member{{Kind: KindMethod, Name: "A.Go()"}})

	assert.True(t, res.ReachableMethods["A.Go()"])
	assert.True(t, res.ReachableMethods["B.Go()"])
}

func TestAnalyzeCollectsGenericSeedsWithoutDuplicates(t *testing.T) {
	g := newFakeGraph()
	g.generics["Program.Main()"] = []GenericInstantiation{
		{OpenDefinitionName: "List", TypeArgNames: []string{"Int32"}},
		{OpenDefinitionName: "List", TypeArgNames: []string{"Int32"}},
		{OpenDefinitionName: "List", TypeArgNames: []string{"String"}},
	}

	res := Analyze(g, []Member{{Kind: KindMethod, Name: "Program.Main()"}})

	assert.Len(t, res.Instantiations, 2)
}

func TestResolveVirtualCallsExpandsOverrides(t *testing.T) {
	g := newFakeGraph()
	g.typeBase["Base"] = ""
	g.overrides["Base.Speak"] = []string{"Derived.Speak()"}

	res := Analyze(g, []Member{{Kind: KindType, Name: "Base"}})
	assert.False(t, res.ReachableMethods["Derived.Speak()"])

	res = ResolveVirtualCalls(g, res, []VirtualCallSite{{DeclaringType: "Base", SlotName: "Speak"}})
	assert.True(t, res.ReachableMethods["Derived.Speak()"])
}

func TestResolveVirtualCallsIsIdempotentWhenNoOverridesExist(t *testing.T) {
	g := newFakeGraph()
	res := Analyze(g, []Member{{Kind: KindType, Name: "Lonely"}})

	res = ResolveVirtualCalls(g, res, []VirtualCallSite{{DeclaringType: "Lonely", SlotName: "Nothing"}})

	assert.Equal(t, []string{"Lonely"}, sortedKeys(res.ReachableTypes))
}

func TestRootsCollectFlattensEntryPointAlwaysKeepAndCctors(t *testing.T) {
	roots := Roots{
		EntryPoint:  "Program.Main()",
		AlwaysKeep:  []string{"Serializer.Write()"},
		StaticCtors: []string{"Widget..cctor()"},
	}

	members := roots.Collect()

	assert.Len(t, members, 3)
	assert.Equal(t, "Program.Main()", members[0].Name)
}
