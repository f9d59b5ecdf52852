package registry

import "github.com/data-tales/data-sources/internal/domain"

func wms(key, label, url string) domain.ServiceDescriptor {
	return domain.ServiceDescriptor{Key: key, Label: label, Kind: domain.KindWMS, URL: url}
}

func wfs(key, label, url string) domain.ServiceDescriptor {
	return domain.ServiceDescriptor{Key: key, Label: label, Kind: domain.KindWFS, URL: url}
}

// builtin is the endpoint table shipped with the binary, in display order.
var builtin = []domain.ServiceDescriptor{
	// Deutscher Wetterdienst
	wfs("dwd_wfs", "DWD GeoServer (WFS)", "https://maps.dwd.de/geoserver/wfs?SERVICE=WFS"),
	wms("dwd_wms", "DWD GeoServer (WMS)", "https://maps.dwd.de/geoserver/wms?SERVICE=WMS"),
	wfs("cdc_wfs", "DWD CDC GeoServer (WFS)", "https://cdc.dwd.de/geoserver/ows?service=WFS"),
	wms("cdc_wms", "DWD CDC GeoServer (WMS)", "https://cdc.dwd.de/geoserver/ows?service=WMS"),

	// Water
	wfs("hlnug_wfs_water", "HLNUG Wasser Hessen (WFS)", "https://geodienste-umwelt.hessen.de/arcgis/services/Wasser/Wasser_WFS/MapServer/WFSServer?SERVICE=WFS"),
	wfs("pegel_wfs", "Pegelonline (WFS)", "https://www.pegelonline.wsv.de/webservices/gis/aktuell/wfs"),
	wms("pegel_wms", "Pegelonline (WMS)", "https://www.pegelonline.wsv.de/webservices/gis/wms/aktuell/mnwmhw?request=GetCapabilities&service=WMS"),
	wfs("hydronote_nl_wfs", "Haleconnect Hydronote NL (WFS)", "https://haleconnect.com/ows/services/org.292.c3955762-73a3-4c16-a15c-f3869487a1e3_wfs?SERVICE=WFS"),
	wms("hynetwork_nl_wms", "Haleconnect HyNetwork NL (WMS)", "https://haleconnect.com/ows/services/org.292.c3955762-73a3-4c16-a15c-f3869487a1e3_wms?SERVICE=WMS"),
	wfs("watercourselink_nl_wfs", "Haleconnect WatercourseLink NL (WFS)", "https://haleconnect.com/ows/services/org.292.c3955762-73a3-4c16-a15c-f3869487a1e3_wfs"),

	// GeoBasis-DE / BKG
	wms("bkg_topplus_open_wms", "GeoBasis-DE / BKG TopPlusOpen (WMS)", "https://sgx.geodatenzentrum.de/wms_topplus_open?SERVICE=WMS"),
	wms("bkg_basemapde_wms", "GeoBasis-DE / BKG basemap.de (WMS)", "https://sgx.geodatenzentrum.de/wms_basemapde?SERVICE=WMS"),
	wms("bkg_vg250_wms", "GeoBasis-DE / BKG Verwaltungsgebiete VG250 (WMS)", "https://sgx.geodatenzentrum.de/wms_vg250?SERVICE=WMS"),
	wfs("bkg_vg250_wfs", "GeoBasis-DE / BKG Verwaltungsgebiete VG250 (WFS)", "https://sgx.geodatenzentrum.de/wfs_vg250?SERVICE=WFS"),
	wms("bkg_gn250_wms", "GeoBasis-DE / BKG Geographische Namen GN250 (WMS)", "https://sgx.geodatenzentrum.de/wms_gn250?SERVICE=WMS"),
	wms("bkg_gn250_inspire_wms", "GeoBasis-DE / BKG INSPIRE Geographical Names GN250 (WMS)", "https://sg.geodatenzentrum.de/wms_gn250_inspire?SERVICE=WMS"),
	wfs("bkg_gn250_inspire_wfs", "GeoBasis-DE / BKG INSPIRE Geographical Names GN250 (WFS)", "https://sg.geodatenzentrum.de/wfs_gn250_inspire?SERVICE=WFS"),
	wfs("bkg_dlm250_inspire_wfs", "GeoBasis-DE / BKG INSPIRE DLM250 (WFS)", "https://sgx.geodatenzentrum.de/wfs_dlm250_inspire?SERVICE=WFS"),
	wms("bkg_dlm250_inspire_wms", "GeoBasis-DE / BKG INSPIRE DLM250 (WMS)", "https://sgx.geodatenzentrum.de/wms_dlm250_inspire?SERVICE=WMS"),

	// Federal agencies
	wms("bfn_schutzgebiete_wms", "BfN Schutzgebiete Deutschland (WMS)", "https://geodienste.bfn.de/ogc/wms/schutzgebiet?SERVICE=WMS"),
	wfs("bfn_schutzgebiete_wfs", "BfN Schutzgebiete Deutschland (WFS)", "https://geodienste.bfn.de/ogc/wfs/schutzgebiet?SERVICE=WFS"),
	wms("thuenen_atlas_wms", "Thünen Atlas GeoServer (WMS)", "https://atlas.thuenen.de/geoserver/wms?SERVICE=WMS"),
	wfs("thuenen_atlas_wfs", "Thünen Atlas GeoServer (WFS)", "https://atlas.thuenen.de/geoserver/wfs?SERVICE=WFS"),
	wms("uba_gwn_wms", "UBA datahub Grundwasserneubildung (WMS)", "https://datahub.uba.de/server/services/Wa/GWN/MapServer/WMSServer?SERVICE=WMS"),
	wms("uba_stickstoff_wms", "UBA datahub Hintergrundbelastung Stickstoff (WMS)", "https://datahub.uba.de/server/services/Lu/Hintergrundbelastungsdaten_Stickstoff/MapServer/WMSServer?SERVICE=WMS"),
	wms("bgr_buek1000_wms", "BGR Boden BUEK1000 (WMS)", "https://services.bgr.de/wms/boden/buek1000en/?SERVICE=WMS"),
	wms("dlr_eoc_land_wms", "DLR EOC Land (WMS)", "https://geoservice.dlr.de/eoc/land/wms?SERVICE=WMS"),
	wfs("dlr_eoc_land_wfs", "DLR EOC Land (WFS)", "https://geoservice.dlr.de/eoc/land/wfs?SERVICE=WFS"),

	// European
	wms("eumetsat_view_wms", "EUMETSAT view GeoServer (WMS)", "https://view.eumetsat.int/geoserver/ows?SERVICE=WMS"),
	wfs("eumetsat_view_wfs", "EUMETSAT view GeoServer (WFS)", "https://view.eumetsat.int/geoserver/ows?SERVICE=WFS"),
	wms("eea_corine_clc2018_wms", "EEA Discomap CORINE Land Cover 2018 (WMS)", "https://image.discomap.eea.europa.eu/arcgis/services/Corine/CLC2018_WM/MapServer/WMSServer?SERVICE=WMS"),
	wms("eea_natura2000_wms", "EEA Discomap Natura 2000 (WMS)", "https://copernicus.discomap.eea.europa.eu/arcgis/services/Natura2000/N2K_2018/MapServer/WMSServer?SERVICE=WMS"),
	wms("copernicus_effis_wms", "Copernicus EMS EFFIS Wildfires (WMS)", "https://maps.effis.emergency.copernicus.eu/effis?SERVICE=WMS"),
	wms("copernicus_efas_wms", "Copernicus EMS EFAS Flood (WMS)", "https://european-flood.emergency.copernicus.eu/api/wms/?SERVICE=WMS"),
	wms("copernicus_drought_wms", "Copernicus EMS European Drought Observatory (WMS)", "https://drought.emergency.copernicus.eu/api/wms?SERVICE=WMS"),
	wms("emodnet_bathymetry_wms", "EMODnet Bathymetry (WMS)", "https://ows.emodnet-bathymetry.eu/wms?SERVICE=WMS"),
	wfs("emodnet_bathymetry_wfs", "EMODnet Bathymetry (WFS)", "https://ows.emodnet-bathymetry.eu/wfs?SERVICE=WFS"),
}

// Builtin returns a copy of the shipped endpoint table.
func Builtin() []domain.ServiceDescriptor {
	out := make([]domain.ServiceDescriptor, len(builtin))
	copy(out, builtin)
	return out
}
