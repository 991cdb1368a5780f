package queryparser_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/docquery/qparse/adapter/queryparser"
	"github.com/docquery/qparse/pkg/bsondoc"
)

type M = map[string]any

type A = []any

func doc(t *testing.T, m M) bsondoc.Object {
	t.Helper()
	obj, err := bsondoc.Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return obj
}

type ParserTestSuite struct {
	suite.Suite
	p *queryparser.Parser
}

func TestParserTestSuite(t *testing.T) {
	suite.Run(t, new(ParserTestSuite))
}

func (s *ParserTestSuite) SetupTest() {
	s.p = queryparser.NewParser()
}

func (s *ParserTestSuite) parse(m M) *queryparser.Node {
	node, err := s.p.Parse(doc(s.T(), m))
	s.Require().NoError(err)
	return node
}

// {a: 1} -> Eq("a", 1)
func (s *ParserTestSuite) TestSimpleFieldEquality() {
	n := s.parse(M{"a": int64(1)})
	s.Equal(queryparser.KindEq, n.Kind)
	s.Equal("a", n.Field)
	got, ok := n.Value.AsInt64()
	s.True(ok)
	s.EqualValues(1, got)
}

// {a: 1, b: 2} -> And[Eq("a",1), Eq("b",2)]
func (s *ParserTestSuite) TestMultipleFieldsBecomeAnd() {
	n := s.parse(M{"a": int64(1), "b": int64(2)})
	s.Equal(queryparser.KindAnd, n.Kind)
	s.Require().Len(n.Children, 2)
	s.Equal("a", n.Children[0].Field)
	s.Equal("b", n.Children[1].Field)
}

// {a: {$gt: 5, $lt: 10}} -> And[Gt("a",5), Lt("a",10)]
func (s *ParserTestSuite) TestComparisonOperatorsCombineWithAnd() {
	n := s.parse(M{"a": M{"$gt": int64(5), "$lt": int64(10)}})
	s.Equal(queryparser.KindAnd, n.Kind)
	s.Require().Len(n.Children, 2)
	s.Equal(queryparser.KindGt, n.Children[0].Kind)
	s.Equal(queryparser.KindLt, n.Children[1].Kind)
}

// {$or: [{a:1},{a:2}]} -> Or[Eq("a",1), Eq("a",2)]
func (s *ParserTestSuite) TestOrCombinesBranches() {
	n := s.parse(M{"$or": A{M{"a": int64(1)}, M{"a": int64(2)}}})
	s.Equal(queryparser.KindOr, n.Kind)
	s.Require().Len(n.Children, 2)
	for _, c := range n.Children {
		s.Equal(queryparser.KindEq, c.Kind)
		s.Equal("a", c.Field)
	}
}

// {a: {$in: [1, /x/]}} -> In("a", eq={1}, regex=[Regex("","x","")])
func (s *ParserTestSuite) TestInMixesEqualityAndRegex() {
	n := s.parse(M{"a": M{"$in": A{int64(1), regexp.MustCompile("x")}}})
	s.Equal(queryparser.KindIn, n.Kind)
	s.Require().NotNil(n.In)
	s.Len(n.In.Eq, 1)
	s.Require().Len(n.In.Regex, 1)
	s.Equal("x", n.In.Regex[0].Pattern)
}

// {a: {$not: {$gt: 5}}} -> Not(Gt("a",5))
func (s *ParserTestSuite) TestNotWrapsSubDocument() {
	n := s.parse(M{"a": M{"$not": M{"$gt": int64(5)}}})
	s.Equal(queryparser.KindNot, n.Kind)
	s.Require().Len(n.Children, 1)
	s.Equal(queryparser.KindGt, n.Children[0].Kind)
	s.Equal("a", n.Children[0].Field)
}

// {a: {$elemMatch: {$gt: 1, $lt: 5}}} -> ElemMatchValue("a", [Gt,Lt])
func (s *ParserTestSuite) TestElemMatchValueForm() {
	n := s.parse(M{"a": M{"$elemMatch": M{"$gt": int64(1), "$lt": int64(5)}}})
	s.Equal(queryparser.KindElemMatchValue, n.Kind)
	s.Equal("a", n.Field)
	s.Require().Len(n.Children, 2)
	s.Equal(queryparser.KindGt, n.Children[0].Kind)
	s.Equal(queryparser.KindLt, n.Children[1].Kind)
}

// {a: {$elemMatch: {x: 1, y: 2}}} -> ElemMatchObject("a", And[Eq(x),Eq(y)])
func (s *ParserTestSuite) TestElemMatchObjectForm() {
	n := s.parse(M{"a": M{"$elemMatch": M{"x": int64(1), "y": int64(2)}}})
	s.Equal(queryparser.KindElemMatchObject, n.Kind)
	s.Require().Len(n.Children, 1)
	sub := n.Children[0]
	s.Equal(queryparser.KindAnd, sub.Kind)
	s.Len(sub.Children, 2)
}

// {a: {$all: []}} -> FalseLiteral
func (s *ParserTestSuite) TestAllEmptyIsFalseLiteral() {
	n := s.parse(M{"a": M{"$all": A{}}})
	s.Equal(queryparser.KindFalseLiteral, n.Kind)
}

// {a: {$size: -3}} -> Size("a", -1)
func (s *ParserTestSuite) TestSizeNegativeMatchesNothing() {
	n := s.parse(M{"a": M{"$size": int64(-3)}})
	s.Equal(queryparser.KindSize, n.Kind)
	s.Equal(queryparser.NoMatchSize, n.Size)
}

// {a: {$options: "i"}} -> BadValue "$options needs a $regex"
func (s *ParserTestSuite) TestOptionsWithoutRegexFails() {
	_, err := s.p.Parse(doc(s.T(), M{"a": M{"$options": "i"}}))
	s.Require().Error(err)
	qe, ok := err.(*queryparser.Error)
	s.Require().True(ok)
	s.Equal(queryparser.BadValue, qe.Code)
}

// {a: {$gt: /x/}} -> BadValue
func (s *ParserTestSuite) TestComparisonRejectsRegex() {
	_, err := s.p.Parse(doc(s.T(), M{"a": M{"$gt": regexp.MustCompile("x")}}))
	s.Require().Error(err)
	qe, ok := err.(*queryparser.Error)
	s.Require().True(ok)
	s.Equal(queryparser.BadValue, qe.Code)
}

// {$atomic: true} at depth 0 -> Atomic; nested -> BadValue
func (s *ParserTestSuite) TestAtomicOnlyAtTopLevel() {
	n := s.parse(M{"$atomic": true})
	s.Equal(queryparser.KindAtomic, n.Kind)

	_, err := s.p.Parse(doc(s.T(), M{"$or": A{M{"$atomic": true}}}))
	s.Require().Error(err)
}

func (s *ParserTestSuite) TestNinIsNotOfIn() {
	n := s.parse(M{"a": M{"$nin": A{int64(1), int64(2)}}})
	s.Equal(queryparser.KindNot, n.Kind)
	s.Require().Len(n.Children, 1)
	s.Equal(queryparser.KindIn, n.Children[0].Kind)
}

func (s *ParserTestSuite) TestNeIsNotOfEq() {
	n := s.parse(M{"a": M{"$ne": int64(7)}})
	s.Equal(queryparser.KindNot, n.Kind)
	s.Require().Len(n.Children, 1)
	s.Equal(queryparser.KindEq, n.Children[0].Kind)
}

func (s *ParserTestSuite) TestRegexOrderIndependentOptions() {
	a := s.parse(M{"f": M{"$regex": "p", "$options": "i"}})
	b := s.parse(M{"f": M{"$options": "i", "$regex": "p"}})
	s.Equal(queryparser.KindRegex, a.Kind)
	s.Equal(a.Pattern, b.Pattern)
	s.Equal(a.Flags, b.Flags)
	s.Equal("p", a.Pattern)
	s.Equal("i", a.Flags)
}

func (s *ParserTestSuite) TestDBRefParsesAsEquality() {
	n := s.parse(M{"r": M{"$ref": "c", "$id": int64(1)}})
	s.Equal(queryparser.KindEq, n.Kind)
	s.Equal("r", n.Field)
}

func (s *ParserTestSuite) TestModValidatesDivisorAndRemainderIndependently() {
	n := s.parse(M{"a": M{"$mod": A{int64(4), int64(0)}}})
	s.Equal(queryparser.KindMod, n.Kind)
	s.EqualValues(4, n.Divisor)
	s.EqualValues(0, n.Remainder)

	_, err := s.p.Parse(doc(s.T(), M{"a": M{"$mod": A{int64(4), "x"}}}))
	s.Require().Error(err)
	qe, ok := err.(*queryparser.Error)
	s.Require().True(ok)
	s.Contains(qe.Message, "remainder")
}

func (s *ParserTestSuite) TestTypeStringAliasAndDoubleQuirk() {
	n := s.parse(M{"a": M{"$type": "string"}})
	s.Equal(queryparser.KindType, n.Kind)
	s.Equal(2, n.TypeCode)

	n2 := s.parse(M{"a": M{"$type": 1.5}})
	s.Equal(queryparser.NoMatchType, n2.TypeCode)
}

func (s *ParserTestSuite) TestDepthLimitExceeded() {
	p := queryparser.NewParser(queryparser.WithMaxDepth(1))
	_, err := p.Parse(doc(s.T(), M{"$or": A{M{"$or": A{M{"$or": A{M{"a": int64(1)}}}}}}}))
	s.Require().Error(err)
}

func (s *ParserTestSuite) TestWhereDisabledByDefaultCallback() {
	_, err := s.p.Parse(doc(s.T(), M{"$where": "this.a == 1"}))
	s.Require().Error(err)
	qe, ok := err.(*queryparser.Error)
	s.Require().True(ok)
	s.Equal(queryparser.NoWhereParseContext, qe.Code)
}

func (s *ParserTestSuite) TestWhereCallbackInvoked() {
	p := queryparser.NewParser(queryparser.WithWhereParser(func(v bsondoc.Value) (any, error) {
		text, _ := v.AsText()
		return text, nil
	}))
	node, err := p.Parse(doc(s.T(), M{"$where": "this.a == 1"}))
	s.Require().NoError(err)
	s.Equal(queryparser.KindWhere, node.Kind)
	s.Equal("this.a == 1", node.Opaque)
}

func (s *ParserTestSuite) TestAllElemMatchModeRequiresConsistency() {
	_, err := s.p.Parse(doc(s.T(), M{"a": M{"$all": A{
		M{"$elemMatch": M{"x": int64(1)}},
		int64(2),
	}}}))
	s.Require().Error(err)
}

func (s *ParserTestSuite) TestAllEqualityMode() {
	n := s.parse(M{"a": M{"$all": A{int64(1), int64(2)}}})
	s.Equal(queryparser.KindAnd, n.Kind)
	s.Require().Len(n.Children, 2)
	for _, c := range n.Children {
		s.Equal(queryparser.KindEq, c.Kind)
	}
}

// {a: {$size: "x"}} -> Size("a", 0), reproducing the historical quirk of
// matching empty arrays on a string argument rather than matching nothing.
func (s *ParserTestSuite) TestSizeTextMatchesEmptyArrays() {
	n := s.parse(M{"a": M{"$size": "x"}})
	s.Equal(queryparser.KindSize, n.Kind)
	s.Equal(0, n.Size)
}

// {a: {$elemMatch: {$ref:"x", $id:1}}} -> ElemMatchObject, since $elemMatch
// always applies permissive DBRef detection independent of the parser's
// configured strictness.
func (s *ParserTestSuite) TestElemMatchDBRefIsObjectForm() {
	n := s.parse(M{"a": M{"$elemMatch": M{"$ref": "x", "$id": int64(1)}}})
	s.Equal(queryparser.KindElemMatchObject, n.Kind)
}

// By default, DBRef detection is strict: a sub-document carrying only $ref
// (no $id) is not recognized as a DBRef, so $ref is dispatched as an
// unrecognized sub-field operator rather than treated as equality.
func (s *ParserTestSuite) TestDBRefStrictByDefaultRejectsIncompleteRef() {
	_, err := s.p.Parse(doc(s.T(), M{"r": M{"$ref": "c"}}))
	s.Require().Error(err)
	qe, ok := err.(*queryparser.Error)
	s.Require().True(ok)
	s.Equal(queryparser.BadValue, qe.Code)
}

// With permissive mode explicitly configured, a lone $ref is enough to
// recognize the sub-document as a DBRef and parse it as equality.
func (s *ParserTestSuite) TestDBRefPermissiveAcceptsLoneRef() {
	p := queryparser.NewParser(queryparser.WithDBRefStrict(false))
	node, err := p.Parse(doc(s.T(), M{"r": M{"$ref": "c"}}))
	s.Require().NoError(err)
	s.Equal(queryparser.KindEq, node.Kind)
	s.Equal("r", node.Field)
}
