package runner

import (
	"github.com/projectdiscovery/arpscan/pkg/version"
	"github.com/projectdiscovery/gologger"
)

const banner = `
   ___ __________  ________________ _____
  / _ '/ __/ _ \ (_-< __/ _ '/ _ \
  \_,_/_/ / .__//___|__/\_,_/_//_/
         /_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", au.Cyan(banner))
	gologger.Print().Msgf("\t\tarpscan %s\n\n", version.GetVersion())
}
