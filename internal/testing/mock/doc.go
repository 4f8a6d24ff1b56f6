// Package mock provides a stub of the CrowdStrike Falcon API for tests.
//
// FalconServer answers the OAuth2 token endpoint and replays canned
// responses per method and path, recording every request so tests can
// assert on headers, query strings and bodies:
//
//	stub := mock.NewFalconServer()
//	stub.Handle(http.MethodGet, "/devices/queries/devices/v1",
//		mock.Response{Status: http.StatusOK, Body: `{"resources":["h1"]}`})
//	if err := stub.Start(); err != nil {
//		t.Fatal(err)
//	}
//	defer stub.Stop(context.Background())
package mock
