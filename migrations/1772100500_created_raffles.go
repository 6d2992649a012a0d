package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_raffle_raffles",
			"name": "raffles",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_raf_pk",
					"name": "id",
					"type": "text",
					"system": true,
					"required": true,
					"primaryKey": true,
					"autogeneratePattern": "[a-z0-9]{15}",
					"pattern": "^[a-z0-9]+$",
					"min": 15,
					"max": 15,
					"presentable": false,
					"hidden": false
				},
				{
					"id": "text_raf_key",
					"name": "raffle_key",
					"type": "text",
					"required": true,
					"presentable": true,
					"hidden": false,
					"min": 0,
					"max": 64
				},
				{
					"id": "json_raf_config",
					"name": "config",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "autodate_raf_created",
					"name": "created",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_raf_updated",
					"name": "updated",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_raffles_key ON raffles (raffle_key)"
			],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_raffle_raffles")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
