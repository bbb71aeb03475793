package executors

import (
	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/execution/plans"
	"github.com/ymakino/TsubameDB/storage/page"
)

// IndexScanExecutor yields the rows behind the RIDs a B+ tree search
// produced, either for one key or for an inclusive key range.
type IndexScanExecutor struct {
	context       *ExecutorContext
	indexName     string
	equality      bool
	key           int32
	low           int32
	high          int32
	tableName     string
	tableMetadata *catalog.TableMetadata
	rids          []page.RID
	pos           int
}

func NewIndexEqualityScanExecutor(context *ExecutorContext, plan *plans.IndexEqualityScanPlanNode) *IndexScanExecutor {
	return &IndexScanExecutor{context: context, indexName: plan.GetIndexName(), equality: true, key: plan.GetKey()}
}

func NewIndexRangeScanExecutor(context *ExecutorContext, plan *plans.IndexRangeScanPlanNode) *IndexScanExecutor {
	return &IndexScanExecutor{context: context, indexName: plan.GetIndexName(), low: plan.GetLow(), high: plan.GetHigh()}
}

func (e *IndexScanExecutor) Init() error {
	indexManager := e.context.GetIndexManager()
	tableName, err := indexManager.IndexedTable(e.indexName)
	if err != nil {
		return err
	}
	tableMetadata, err := e.context.GetCatalog().GetTableByName(tableName)
	if err != nil {
		return err
	}

	var rids []page.RID
	if e.equality {
		rids, err = indexManager.SearchRids(e.indexName, e.key)
	} else {
		rids, err = indexManager.RangeSearchRids(e.indexName, e.low, e.high)
	}
	if err != nil {
		return err
	}

	e.tableName = tableName
	e.tableMetadata = tableMetadata
	e.rids = rids
	e.pos = 0
	return nil
}

func (e *IndexScanExecutor) Next() (*Row, error) {
	if e.pos >= len(e.rids) {
		return nil, nil
	}
	rid := e.rids[e.pos]
	e.pos++
	values, err := e.context.GetStorageManager().Read(e.tableName, rid)
	if err != nil {
		return nil, err
	}
	return NewRow(values, &rid, e.tableMetadata.Schema()), nil
}

func (e *IndexScanExecutor) Close() {}
