package testdata

import "github.com/jwaldner/stockai/internal/models"

// MockAppleSeries returns a frozen AAPL daily series shaped like a
// prediction service response: the first points carry both values, the
// last ones are forecast-only. A fresh slice is returned on every call.
func MockAppleSeries() []models.PricePoint {
	return []models.PricePoint{
		{Date: "2024-01-01", Actual: models.Price(150.00), Predicted: models.Price(151.00)},
		{Date: "2024-01-02", Actual: models.Price(185.64), Predicted: models.Price(184.90)},
		{Date: "2024-01-03", Actual: models.Price(184.25), Predicted: models.Price(185.10)},
		{Date: "2024-01-04", Actual: models.Price(181.91), Predicted: models.Price(183.40)},
		{Date: "2024-01-05", Actual: models.Price(181.18), Predicted: models.Price(182.02)},
		{Date: "2024-01-08", Actual: models.Price(185.56)},
		{Date: "2024-01-09", Actual: models.Price(185.14)},
		{Date: "2024-01-10", Predicted: models.Price(186.20)},
		{Date: "2024-01-11", Predicted: models.Price(186.95)},
	}
}

// MockAppleJSON is MockAppleSeries as the service encodes it on the wire
const MockAppleJSON = `[
	{"date":"2024-01-01","actual":150,"predicted":151},
	{"date":"2024-01-02","actual":185.64,"predicted":184.9},
	{"date":"2024-01-03","actual":184.25,"predicted":185.1},
	{"date":"2024-01-04","actual":181.91,"predicted":183.4},
	{"date":"2024-01-05","actual":181.18,"predicted":182.02},
	{"date":"2024-01-08","actual":185.56,"predicted":null},
	{"date":"2024-01-09","actual":185.14},
	{"date":"2024-01-10","actual":null,"predicted":186.2},
	{"date":"2024-01-11","actual":null,"predicted":186.95}
]`
