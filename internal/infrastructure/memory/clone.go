package memory

import "github.com/jhoicas/biztracker/internal/domain/entity"

func cloneItem(v entity.Item) entity.Item {
	if v.LegacyComponents != nil {
		v.LegacyComponents = append([]entity.LegacyComponent(nil), v.LegacyComponents...)
	}
	if v.LegacyDerivedFrom != nil {
		d := *v.LegacyDerivedFrom
		v.LegacyDerivedFrom = &d
	}
	return v
}

func clonePurchase(v entity.Purchase) entity.Purchase {
	if v.LegacyItems != nil {
		v.LegacyItems = append([]entity.LegacyPurchaseItem(nil), v.LegacyItems...)
	}
	if v.LegacyAssets != nil {
		v.LegacyAssets = append([]entity.LegacyPurchaseAsset(nil), v.LegacyAssets...)
	}
	return v
}

func cloneSale(v entity.Sale) entity.Sale {
	if v.LegacyItems != nil {
		v.LegacyItems = append([]entity.LegacySaleItem(nil), v.LegacyItems...)
	}
	return v
}

func cloneRelationship(v entity.Relationship) entity.Relationship {
	if v.Measurements != nil {
		m := *v.Measurements
		v.Measurements = &m
	}
	switch a := v.Attributes.(type) {
	case *entity.PurchaseItemAttributes:
		if a != nil {
			c := *a
			v.Attributes = &c
		}
	case *entity.SaleItemAttributes:
		if a != nil {
			c := *a
			v.Attributes = &c
		}
	}
	return v
}

func cloneJob(v entity.ConversionJob) entity.ConversionJob {
	if v.CompletedAt != nil {
		t := *v.CompletedAt
		v.CompletedAt = &t
	}
	return v
}
