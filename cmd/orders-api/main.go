// @title           Orders API
// @version         1.0
// @description     Order management with bearer-token authentication and ownership-based authorization.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import "github.com/storefront/orders-api/cmd/orders-api/cmd"

func main() {
	cmd.Execute()
}
