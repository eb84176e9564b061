package main_test

import (
	"net/http"
	"testing"

	"github.com/amirasaad/fxpay/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

type MainTestSuite struct {
	suite.Suite
	env *testutils.Env
}

func (s *MainTestSuite) SetupTest() {
	s.env = testutils.NewEnv(s.T())
}

func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (s *MainTestSuite) TestRootRoute() {
	resp := s.env.MakeRequest(s.T(), http.MethodGet, "/", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *MainTestSuite) TestProtectedRoute_Unauthorized() {
	resp := s.env.MakeRequest(s.T(), http.MethodGet, "/api/beneficiaries", "", "bogus")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *MainTestSuite) TestNotFoundRoute() {
	resp := s.env.MakeRequest(s.T(), http.MethodGet, "/doesnotexist", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *MainTestSuite) TestLoginRoute_BadRequest() {
	resp := s.env.MakeRequest(s.T(), http.MethodPost, "/api/auth/login", "{", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
