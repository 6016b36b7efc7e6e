/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/killallgit/genre-api/cmd"

// @title           Genre Classification API
// @version         1.0.0
// @description     Classifies audio clips into music genres from 57 timbral and rhythmic features
// @termsOfService  http://swagger.io/terms/
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/genre-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:5000
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
