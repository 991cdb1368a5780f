package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CLITestSuite struct {
	suite.Suite
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) TestParsesAndDumpsTree() {
	var out bytes.Buffer
	code := run(nil, strings.NewReader(`{"a": 1}`), &out)
	s.Equal(0, code)
	s.Contains(out.String(), "Eq")
}

func (s *CLITestSuite) TestReportsParseFailure() {
	var out bytes.Buffer
	code := run(nil, strings.NewReader(`{"a": {"$gt": "not", "$lt": "numbers", "$unknownOp": 1}}`), &out)
	s.Equal(1, code)
}

func (s *CLITestSuite) TestInvalidJSONFails() {
	var out bytes.Buffer
	code := run(nil, strings.NewReader(`not json`), &out)
	s.Equal(1, code)
}

func (s *CLITestSuite) TestWhereDisabledByDefault() {
	var out bytes.Buffer
	code := run(nil, strings.NewReader(`{"$where": "this.a"}`), &out)
	s.Equal(1, code)
}

func (s *CLITestSuite) TestPrintDefaultConfig() {
	var out bytes.Buffer
	code := run([]string{"--print-default-config"}, strings.NewReader(""), &out)
	s.Equal(0, code)
	s.Contains(out.String(), "max-depth")
}
