// Application server is the main server for the application
package main

import (
	"context"
	"os"

	"github.com/starquake/kuis/cmd/server/app"
	"github.com/starquake/kuis/internal/must"
)

func main() {
	ctx := context.Background()
	must.OK(app.Run(ctx, os.Getenv, os.Stdout, nil))
}
