package plans

// IndexEqualityScanPlanNode reads the records whose indexed column
// equals key.
type IndexEqualityScanPlanNode struct {
	indexName string
	key       int32
}

func NewIndexEqualityScanPlanNode(indexName string, key int32) *IndexEqualityScanPlanNode {
	return &IndexEqualityScanPlanNode{indexName, key}
}

func (p *IndexEqualityScanPlanNode) GetType() PlanType { return IndexEqualityScan }

func (p *IndexEqualityScanPlanNode) GetIndexName() string { return p.indexName }

func (p *IndexEqualityScanPlanNode) GetKey() int32 { return p.key }

// IndexRangeScanPlanNode reads the records whose indexed column falls
// in [low, high]. The planner emits low=1, high=0 for a provably empty
// range.
type IndexRangeScanPlanNode struct {
	indexName string
	low       int32
	high      int32
}

func NewIndexRangeScanPlanNode(indexName string, low int32, high int32) *IndexRangeScanPlanNode {
	return &IndexRangeScanPlanNode{indexName, low, high}
}

func (p *IndexRangeScanPlanNode) GetType() PlanType { return IndexRangeScan }

func (p *IndexRangeScanPlanNode) GetIndexName() string { return p.indexName }

func (p *IndexRangeScanPlanNode) GetLow() int32 { return p.low }

func (p *IndexRangeScanPlanNode) GetHigh() int32 { return p.high }
