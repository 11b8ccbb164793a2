package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"fluxgallery/internal/modelcfg"
)

// modelctl manages the models config file without going through the API.
func main() {
	_ = godotenv.Load()

	path := flag.String("config", os.Getenv("MODELS_CONFIG_PATH"), "path to models.json")
	action := flag.String("action", "list", "list | add | enable | disable | delete")
	id := flag.String("id", "", "model id (enable/disable/delete)")
	label := flag.String("label", "", "model label (add)")
	endpoint := flag.String("endpoint", "", "provider endpoint (add)")
	apiKey := flag.String("api-key", "", "provider api key (add)")
	quality := flag.String("quality", "", "optional quality hint (add)")
	flag.Parse()

	if *path == "" {
		*path = "config/models.json"
	}
	store, err := modelcfg.NewStore(*path)
	if err != nil {
		fail(err)
	}

	switch *action {
	case "list":
		models, err := store.List()
		if err != nil {
			fail(err)
		}
		for _, m := range models {
			state := "disabled"
			if m.Enabled {
				state = "enabled"
			}
			fmt.Printf("%s  %-30s %-8s key=%s\n", m.ID, m.Label, state, modelcfg.MaskAPIKey(m.APIKey))
		}
	case "add":
		model, err := store.Create(modelcfg.Model{
			Label:    *label,
			Endpoint: *endpoint,
			APIKey:   *apiKey,
			Quality:  *quality,
			Enabled:  true,
		})
		if err != nil {
			fail(err)
		}
		fmt.Printf("created %s\n", model.ID)
	case "enable", "disable":
		enabled := *action == "enable"
		if _, err := store.Update(*id, modelcfg.Update{Enabled: &enabled}); err != nil {
			fail(err)
		}
		fmt.Printf("%s %s\n", *action+"d", *id)
	case "delete":
		if err := store.Delete(*id); err != nil {
			fail(err)
		}
		fmt.Printf("deleted %s\n", *id)
	default:
		fail(fmt.Errorf("unknown action %q", *action))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "modelctl:", err)
	os.Exit(1)
}
