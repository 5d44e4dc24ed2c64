package erroranalytics_test

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	erroranalytics "github.com/erroranalytics/erroranalytics-go"
)

func ExampleRegister() {
	r, err := erroranalytics.Register(os.Getenv("ERRORANALYTICS_INTEGRATION_KEY"), func(report *erroranalytics.Report) {
		fmt.Fprintf(os.Stderr, "reported %q\n", report.Message)
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	defer r.Recover(ctx)

	logger := zerolog.New(os.Stderr).Hook(r.Hook(zerolog.ErrorLevel))
	http.Handle("/", r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logger.Error().Str("path", req.URL.Path).Msg("not implemented")
		w.WriteHeader(http.StatusNotImplemented)
	})))
}
