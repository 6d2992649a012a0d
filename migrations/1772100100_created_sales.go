package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_raffle_sales",
			"name": "sales",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_sales_pk",
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
					"id": "text_sales_local_id",
					"name": "local_id",
					"type": "text",
					"required": false,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 64
				},
				{
					"id": "json_sales_numbers",
					"name": "numbers",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "json_sales_buyer",
					"name": "buyer",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "select_sales_payment",
					"name": "payment_method",
					"type": "select",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSelect": 1,
					"values": ["cash", "transfer"]
				},
				{
					"id": "number_sales_total",
					"name": "total",
					"type": "number",
					"required": false,
					"presentable": false,
					"hidden": false,
					"onlyInt": false
				},
				{
					"id": "select_sales_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSelect": 1,
					"values": ["pending", "paid"]
				},
				{
					"id": "autodate_sales_created",
					"name": "created",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_sales_updated",
					"name": "updated",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_sales_status ON sales (status)",
				"CREATE UNIQUE INDEX idx_sales_local_id ON sales (local_id) WHERE local_id != ''"
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
		collection, err := app.FindCollectionByNameOrId("pbc_raffle_sales")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
