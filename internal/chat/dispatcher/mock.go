package dispatcher

import (
	"genba_backend/internal/chat/blocks"
)

// mockResult serves a canned fixture for an allow-listed action. Fixtures
// mirror the shape a live tool function would return so the UI renders the
// same either way.
func mockResult(action string, params map[string]string) ToolResult {
	switch action {
	case ActionExportCSV:
		return ToolResult{
			Kind: KindCSV,
			CSV:  "date,worker,unit,amount\n2024-07-01,山田,1.0,18000\n2024-07-01,佐藤,0.5,7500\n",
		}

	case ActionOpenPage:
		page := params["page"]
		if page == "" {
			page = "/sites"
		}
		return ToolResult{Kind: KindOpenPage, URL: page}

	case ActionPreviewPDF:
		return ToolResult{Kind: KindBlocks, Blocks: []blocks.Block{
			blocks.File("preview.pdf", "https://example.invalid/preview.pdf"),
		}}

	case ActionMaterialsIngest:
		return ToolResult{Kind: KindBlocks, Blocks: []blocks.Block{
			blocks.Text("資材台帳に3件追加しました。"),
			blocks.Table(
				[]string{"品名", "数量", "単価"},
				[][]string{
					{"コンパネ", "20", "1,480"},
					{"単管パイプ", "50", "820"},
					{"クランプ", "100", "180"},
				},
			),
		}}

	case ActionEstimateDraft:
		return ToolResult{Kind: KindBlocks, Blocks: []blocks.Block{
			blocks.Text("見積ドラフトを作成しました。"),
			blocks.Stats(
				blocks.Stat{Label: "小計", Value: "¥350,000"},
				blocks.Stat{Label: "消費税", Value: "¥35,000"},
				blocks.Stat{Label: "合計", Value: "¥385,000"},
			),
			blocks.Actions(blocks.ActionItem{
				Label:  "見積を確定する",
				Action: ActionOpenPage,
				Params: map[string]string{"page": "/estimates/draft"},
			}),
		}}

	case ActionInvoiceCreate:
		return ToolResult{Kind: KindBlocks, Blocks: []blocks.Block{
			blocks.Text("請求書ドラフトを作成しました。"),
			blocks.Actions(blocks.ActionItem{
				Label:  "内容を確認する",
				Action: ActionOpenPage,
				Params: map[string]string{"page": "/invoices/draft"},
			}),
		}}

	default:
		return ToolResult{Kind: KindUnknown}
	}
}
