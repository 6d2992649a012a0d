package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_raffle_number_owners",
			"name": "number_owners",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_own_pk",
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
					"id": "text_own_assignment",
					"name": "assignment_id",
					"type": "text",
					"required": true,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 64
				},
				{
					"id": "number_own_value",
					"name": "number_value",
					"type": "number",
					"required": true,
					"presentable": true,
					"hidden": false,
					"onlyInt": true
				},
				{
					"id": "json_own_owner",
					"name": "owner",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "date_own_edited",
					"name": "edited_at",
					"type": "date",
					"required": false,
					"presentable": false,
					"hidden": false
				},
				{
					"id": "autodate_own_created",
					"name": "created",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_own_updated",
					"name": "updated",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_owners_assignment_number ON number_owners (assignment_id, number_value)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_raffle_number_owners")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
