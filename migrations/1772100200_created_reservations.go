package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_raffle_reservations",
			"name": "reservations",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_res_pk",
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
					"id": "text_res_local_id",
					"name": "local_id",
					"type": "text",
					"required": false,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 64
				},
				{
					"id": "json_res_numbers",
					"name": "numbers",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "json_res_buyer",
					"name": "buyer",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "number_res_total",
					"name": "total",
					"type": "number",
					"required": false,
					"presentable": false,
					"hidden": false,
					"onlyInt": false
				},
				{
					"id": "select_res_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSelect": 1,
					"values": ["active", "confirmed", "cancelled", "expired"]
				},
				{
					"id": "date_res_expires",
					"name": "expires_at",
					"type": "date",
					"required": true,
					"presentable": false,
					"hidden": false
				},
				{
					"id": "autodate_res_created",
					"name": "created",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_res_updated",
					"name": "updated",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_reservations_status ON reservations (status)",
				"CREATE INDEX idx_reservations_expires ON reservations (expires_at)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_raffle_reservations")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
